package tools_test

import (
	"testing"

	"github.com/Maksym-Lukianenko123/impc/tools"
)

func TestGenerate_TracksReadsAndWrites(t *testing.T) {
	table := parseOrFail(t, `
PROGRAM IS
    x, y
IN
    x := 1;
    y := x + 1;
    WRITE y;
END
`)
	refs := tools.NewGenerator().Generate(table)
	program, ok := refs["PROGRAM"]
	if !ok {
		t.Fatal("expected a PROGRAM entry in the cross-reference")
	}

	xVar := program.Symbols["x"]
	if xVar == nil {
		t.Fatal("expected an x entry")
	}
	var sawWrite, sawRead bool
	for _, ref := range xVar.References {
		switch ref.Kind {
		case tools.RefWrite:
			sawWrite = true
		case tools.RefRead:
			sawRead = true
		}
	}
	if !sawWrite || !sawRead {
		t.Errorf("expected both a write and a read reference for x, got %+v", xVar.References)
	}
}

func TestGenerate_TracksCallSites(t *testing.T) {
	table := parseOrFail(t, `
PROCEDURE bump(x) IS
IN
    x := x + 1;
END

PROGRAM IS
    n
IN
    n := 1;
    bump(n);
    bump(n);
END
`)
	refs := tools.NewGenerator().Generate(table)
	bump, ok := refs["bump"]
	if !ok {
		t.Fatal("expected a bump entry in the cross-reference")
	}
	if len(bump.CalledBy) != 2 {
		t.Errorf("got %d call sites for bump, want 2", len(bump.CalledBy))
	}
}

func TestSortedNames_ReturnsNamesInOrder(t *testing.T) {
	table := parseOrFail(t, `
PROCEDURE zeta(x) IS
IN
END

PROCEDURE alpha(x) IS
IN
END

PROGRAM IS
IN
END
`)
	refs := tools.NewGenerator().Generate(table)
	names := tools.SortedNames(refs)
	if len(names) != 3 || names[0] != "PROGRAM" || names[1] != "alpha" || names[2] != "zeta" {
		t.Errorf("got %v, want sorted [PROGRAM alpha zeta]", names)
	}
}
