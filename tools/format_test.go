package tools_test

import (
	"strings"
	"testing"

	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/tools"
)

func TestFormat_CompactIncludesAddressesAndOperands(t *testing.T) {
	program := []machine.Instruction{
		{Op: machine.OpRst, Reg: machine.RegA},
		{Op: machine.OpInc, Reg: machine.RegA},
		{Op: machine.OpWrite},
		{Op: machine.OpHalt},
	}
	out := tools.Format(program, nil, tools.CompactFormatOptions())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), out)
	}
	if lines[0] != "0: RST a" {
		t.Errorf("line 0 = %q, want %q", lines[0], "0: RST a")
	}
	if lines[3] != "3: HALT" {
		t.Errorf("line 3 = %q, want %q", lines[3], "3: HALT")
	}
}

func TestFormat_DefaultAlignsOperandColumn(t *testing.T) {
	program := []machine.Instruction{{Op: machine.OpJump, Line: 5}}
	out := tools.Format(program, nil, tools.DefaultFormatOptions())
	if !strings.Contains(out, "JUMP") || !strings.Contains(out, "5") {
		t.Errorf("expected JUMP and operand 5 in output, got %q", out)
	}
}

func TestFormat_EntryLinesAnnotateProcedureStarts(t *testing.T) {
	program := []machine.Instruction{
		{Op: machine.OpJump, Line: 1},
		{Op: machine.OpHalt},
	}
	entries := map[int]string{1: "PROGRAM"}
	out := tools.Format(program, entries, tools.CompactFormatOptions())
	if !strings.Contains(out, "; PROGRAM") {
		t.Errorf("expected a PROGRAM annotation, got %q", out)
	}
}
