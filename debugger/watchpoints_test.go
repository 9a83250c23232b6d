package debugger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

func newTestVM() *machine.VM {
	return machine.NewVM(nil, strings.NewReader(""), &bytes.Buffer{})
}

func TestWatchpointManager_AddRegisterAndMemory(t *testing.T) {
	wm := NewWatchpointManager()
	reg := wm.AddRegister(machine.RegA)
	mem := wm.AddMemory(4)

	if reg.ID == mem.ID {
		t.Fatalf("expected distinct IDs, got %d for both", reg.ID)
	}
	if !reg.IsRegister {
		t.Fatalf("expected register watchpoint to have IsRegister set")
	}
	if mem.IsRegister {
		t.Fatalf("expected memory watchpoint to have IsRegister unset")
	}
	if wm.Count() != 2 {
		t.Fatalf("expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_CheckReportsChangeAfterInit(t *testing.T) {
	vm := newTestVM()
	wm := NewWatchpointManager()
	wp := wm.AddRegister(machine.RegA)

	if err := wm.Init(wp.ID, vm); err != nil {
		t.Fatalf("Init returned an error: %v", err)
	}
	if _, _, _, changed := wm.Check(vm); changed {
		t.Fatalf("expected no change immediately after Init")
	}

	vm.Registers[machine.RegA] = 7
	hit, previous, current, changed := wm.Check(vm)
	if !changed {
		t.Fatalf("expected a change after the register was written")
	}
	if hit.ID != wp.ID || previous != 0 || current != 7 {
		t.Fatalf("unexpected watchpoint hit: %+v previous=%d current=%d", hit, previous, current)
	}
	if wp.HitCount != 1 {
		t.Fatalf("expected HitCount 1, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_CheckSkipsDisabled(t *testing.T) {
	vm := newTestVM()
	wm := NewWatchpointManager()
	wp := wm.AddRegister(machine.RegB)
	wm.Init(wp.ID, vm)
	wm.SetEnabled(wp.ID, false)

	vm.Registers[machine.RegB] = 99
	if _, _, _, changed := wm.Check(vm); changed {
		t.Fatalf("a disabled watchpoint must not fire")
	}
}

func TestWatchpointManager_MemoryWatchpoint(t *testing.T) {
	vm := newTestVM()
	wm := NewWatchpointManager()
	wp := wm.AddMemory(12)
	wm.Init(wp.ID, vm)

	vm.Memory.Store(12, 42)
	hit, _, current, changed := wm.Check(vm)
	if !changed || hit.ID != wp.ID || current != 42 {
		t.Fatalf("expected memory watchpoint to fire with value 42, got changed=%v hit=%+v current=%d", changed, hit, current)
	}
}

func TestWatchpointManager_DeleteAndSetEnabledErrorOnUnknownID(t *testing.T) {
	wm := NewWatchpointManager()
	if err := wm.Delete(99); err == nil {
		t.Fatalf("expected an error deleting an unknown watchpoint")
	}
	if err := wm.SetEnabled(99, true); err == nil {
		t.Fatalf("expected an error enabling an unknown watchpoint")
	}
	if err := wm.Init(99, newTestVM()); err == nil {
		t.Fatalf("expected an error initializing an unknown watchpoint")
	}
}

func TestWatchpointManager_ClearRemovesEverything(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddRegister(machine.RegA)
	wm.AddMemory(0)

	wm.Clear()
	if wm.Count() != 0 {
		t.Fatalf("expected 0 watchpoints after Clear, got %d", wm.Count())
	}
}
