package debugger

import "testing"

func TestBreakpointManager_AddAssignsSequentialIDs(t *testing.T) {
	bm := NewBreakpointManager()
	first := bm.Add(10, 3, false)
	second := bm.Add(20, 5, false)

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if bm.Count() != 2 {
		t.Fatalf("expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddAtSameAddressReplaces(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(10, 3, false)
	bp := bm.Add(10, 3, true)

	if bp.ID != 1 {
		t.Fatalf("expected the existing breakpoint to be reused, got new ID %d", bp.ID)
	}
	if !bp.Temporary {
		t.Fatalf("expected the replacement Add to update Temporary")
	}
	if bm.Count() != 1 {
		t.Fatalf("expected exactly 1 breakpoint at the shared address, got %d", bm.Count())
	}
}

func TestBreakpointManager_DeleteByID(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(10, 0, false)

	if err := bm.Delete(bp.ID); err != nil {
		t.Fatalf("Delete returned an error: %v", err)
	}
	if bm.Count() != 0 {
		t.Fatalf("expected 0 breakpoints after delete, got %d", bm.Count())
	}
	if err := bm.Delete(bp.ID); err == nil {
		t.Fatalf("expected an error deleting an already-deleted breakpoint")
	}
}

func TestBreakpointManager_DeleteAt(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(10, 0, false)

	if err := bm.DeleteAt(10); err != nil {
		t.Fatalf("DeleteAt returned an error: %v", err)
	}
	if err := bm.DeleteAt(10); err == nil {
		t.Fatalf("expected an error for a second DeleteAt at the same address")
	}
}

func TestBreakpointManager_SetEnabled(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(10, 0, false)

	if err := bm.SetEnabled(bp.ID, false); err != nil {
		t.Fatalf("SetEnabled returned an error: %v", err)
	}
	if bm.At(10).Enabled {
		t.Fatalf("expected breakpoint to be disabled")
	}

	if err := bm.SetEnabled(99, false); err == nil {
		t.Fatalf("expected an error for an unknown ID")
	}
}

func TestBreakpointManager_HitIncrementsCountAndRemovesTemporary(t *testing.T) {
	bm := NewBreakpointManager()
	permanent := bm.Add(10, 0, false)
	temporary := bm.Add(20, 0, true)

	if hit := bm.Hit(10); hit == nil || hit.ID != permanent.ID || hit.HitCount != 1 {
		t.Fatalf("expected a hit snapshot with HitCount 1, got %+v", hit)
	}
	if bm.At(10) == nil {
		t.Fatalf("a permanent breakpoint must survive a hit")
	}

	if hit := bm.Hit(20); hit == nil || hit.ID != temporary.ID {
		t.Fatalf("expected the temporary breakpoint to fire once, got %+v", hit)
	}
	if bm.At(20) != nil {
		t.Fatalf("a temporary breakpoint must be removed after firing")
	}
}

func TestBreakpointManager_HitIgnoresDisabledAndMissing(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(10, 0, false)
	bm.SetEnabled(bp.ID, false)

	if hit := bm.Hit(10); hit != nil {
		t.Fatalf("a disabled breakpoint must not fire, got %+v", hit)
	}
	if hit := bm.Hit(999); hit != nil {
		t.Fatalf("an address with no breakpoint must not fire, got %+v", hit)
	}
}

func TestBreakpointManager_ClearRemovesEverything(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(10, 0, false)
	bm.Add(20, 0, false)

	bm.Clear()
	if bm.Count() != 0 {
		t.Fatalf("expected 0 breakpoints after Clear, got %d", bm.Count())
	}
}
