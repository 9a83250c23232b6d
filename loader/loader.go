// Package loader reads a compiled instruction listing — either the
// []machine.Instruction a codegen run produced in-process, or the same
// program serialized to text by tools.Format — back into a form ready to
// run: a fresh *machine.VM. Since codegen.Generate already produces a
// flat, fully-linked instruction stream, there is no segment/directive
// bookkeeping left to do here.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

// NewVM builds a fresh VM around an already-compiled program, wiring the
// given input/output streams into a freshly constructed machine.VM.
func NewVM(program []machine.Instruction, in io.Reader, out io.Writer) *machine.VM {
	return machine.NewVM(program, in, out)
}

var opcodeByName = func() map[string]machine.Opcode {
	m := make(map[string]machine.Opcode, 19)
	for op := machine.OpRead; op <= machine.OpHalt; op++ {
		m[op.String()] = op
	}
	return m
}()

var registerByName = func() map[string]machine.Register {
	m := make(map[string]machine.Register, 8)
	for r := machine.RegA; r <= machine.RegH; r++ {
		m[r.String()] = r
	}
	return m
}()

// Load parses a textual listing produced by tools.Format back into an
// instruction stream. Lines starting with "#" or ";" (tools.Format's
// procedure-entry annotations) are comments. Each non-blank, non-comment
// line has the shape
// "<addr>: OPNAME [operand]", the same shape tools.Format writes; leading
// line addresses are checked for the gapless, ascending sequence a linked
// program must have (spec.md §4.1's "line N holds instruction N" contract)
// but are otherwise discarded, since the slice index recreates them.
func Load(r io.Reader) ([]machine.Instruction, error) {
	var program []machine.Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		addrText, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("listing line %d: missing \"addr:\" prefix: %q", lineNo, line)
		}
		addr, err := strconv.Atoi(strings.TrimSpace(addrText))
		if err != nil {
			return nil, fmt.Errorf("listing line %d: invalid address %q: %w", lineNo, addrText, err)
		}
		if addr != len(program) {
			return nil, fmt.Errorf("listing line %d: expected address %d, got %d", lineNo, len(program), addr)
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return nil, fmt.Errorf("listing line %d: missing opcode", lineNo)
		}
		op, ok := opcodeByName[fields[0]]
		if !ok {
			return nil, fmt.Errorf("listing line %d: unknown opcode %q", lineNo, fields[0])
		}

		inst := machine.Instruction{Op: op}
		switch {
		case op.HasRegisterOperand():
			if len(fields) != 2 {
				return nil, fmt.Errorf("listing line %d: %s requires a register operand", lineNo, fields[0])
			}
			reg, ok := registerByName[fields[1]]
			if !ok {
				return nil, fmt.Errorf("listing line %d: unknown register %q", lineNo, fields[1])
			}
			inst.Reg = reg
		case op.HasLineOperand():
			if len(fields) != 2 {
				return nil, fmt.Errorf("listing line %d: %s requires a line operand", lineNo, fields[0])
			}
			target, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("listing line %d: invalid line operand %q: %w", lineNo, fields[1], err)
			}
			inst.Line = target
		default:
			if len(fields) != 1 {
				return nil, fmt.Errorf("listing line %d: %s takes no operand", lineNo, fields[0])
			}
		}

		program = append(program, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	return program, nil
}

// LoadString is a convenience wrapper around Load for in-memory listings
// (tests, the debugger's "load a saved session" path).
func LoadString(listing string) ([]machine.Instruction, error) {
	return Load(strings.NewReader(listing))
}
