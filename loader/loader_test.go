package loader_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Maksym-Lukianenko123/impc/loader"
	"github.com/Maksym-Lukianenko123/impc/machine"
)

func TestLoadString_RoundTripsASimpleListing(t *testing.T) {
	listing := `
0: JUMP 1
1: RST a
2: INC a
3: INC a
4: WRITE
5: HALT
`
	program, err := loader.LoadString(listing)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	want := []machine.Instruction{
		{Op: machine.OpJump, Line: 1},
		{Op: machine.OpRst, Reg: machine.RegA},
		{Op: machine.OpInc, Reg: machine.RegA},
		{Op: machine.OpInc, Reg: machine.RegA},
		{Op: machine.OpWrite},
		{Op: machine.OpHalt},
	}
	if len(program) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(program), len(want))
	}
	for i := range want {
		if program[i] != want[i] {
			t.Errorf("instruction %d: got %+v, want %+v", i, program[i], want[i])
		}
	}
}

func TestLoadString_RunsOnAFreshVM(t *testing.T) {
	listing := `0: JUMP 1
1: RST a
2: INC a
3: INC a
4: WRITE
5: HALT
`
	program, err := loader.LoadString(listing)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	var out bytes.Buffer
	vm := loader.NewVM(program, strings.NewReader(""), &out)
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "2" {
		t.Errorf("output = %q, want %q", got, "2")
	}
}

func TestLoadString_RejectsOutOfOrderAddresses(t *testing.T) {
	listing := `0: HALT
2: HALT
`
	if _, err := loader.LoadString(listing); err == nil {
		t.Fatal("expected an error for an out-of-order address, got nil")
	}
}

func TestLoadString_RejectsUnknownOpcode(t *testing.T) {
	if _, err := loader.LoadString("0: FROB a\n"); err == nil {
		t.Fatal("expected an error for an unknown opcode, got nil")
	}
}

func TestLoadString_RejectsMissingRegisterOperand(t *testing.T) {
	if _, err := loader.LoadString("0: INC\n"); err == nil {
		t.Fatal("expected an error for a missing register operand, got nil")
	}
}

func TestLoadString_IgnoresBlankLinesAndComments(t *testing.T) {
	listing := `
# a trivial program
0: HALT

`
	program, err := loader.LoadString(listing)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if len(program) != 1 {
		t.Fatalf("got %d instructions, want 1", len(program))
	}
}
