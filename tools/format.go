// Package tools provides editor/CI-facing utilities over a compiled
// program: format (pretty-print a listing), lint (static use-before-set
// analysis without full codegen), and xref (procedure/symbol
// cross-reference).
package tools

import (
	"fmt"
	"strings"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

// FormatStyle selects how much whitespace Format uses between a listing's
// address, mnemonic, and operand columns.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // aligned columns
	FormatCompact                     // single space, no alignment
	FormatExpanded                    // wider columns, blank line between procedures
)

// FormatOptions controls Format's output.
type FormatOptions struct {
	Style          FormatStyle
	MnemonicColumn int // column the opcode mnemonic starts at
	OperandColumn  int // column the operand starts at
	ShowAddresses  bool
}

// DefaultFormatOptions returns the aligned, address-annotated default.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:          FormatDefault,
		MnemonicColumn: 8,
		OperandColumn:  16,
		ShowAddresses:  true,
	}
}

// CompactFormatOptions returns minimal-whitespace, unaligned options.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact, ShowAddresses: true}
}

// ExpandedFormatOptions returns wide-column options with a blank line
// before every procedure entry point.
func ExpandedFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:          FormatExpanded,
		MnemonicColumn: 12,
		OperandColumn:  24,
		ShowAddresses:  true,
	}
}

// Format renders program as a listing, one line per instruction. entryLines
// marks addresses that begin a procedure (PROGRAM or a PROCEDURE's
// first_line); under FormatExpanded a blank line is inserted before each.
func Format(program []machine.Instruction, entryLines map[int]string, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}

	var b strings.Builder
	for addr, inst := range program {
		if opts.Style == FormatExpanded && addr > 0 {
			if _, ok := entryLines[addr]; ok {
				b.WriteString("\n")
			}
		}
		if name, ok := entryLines[addr]; ok {
			fmt.Fprintf(&b, "; %s\n", name)
		}

		switch opts.Style {
		case FormatCompact:
			if opts.ShowAddresses {
				fmt.Fprintf(&b, "%d: %s\n", addr, instructionText(inst))
			} else {
				fmt.Fprintf(&b, "%s\n", instructionText(inst))
			}
		default:
			writeAligned(&b, addr, inst, opts)
		}
	}
	return b.String()
}

func writeAligned(b *strings.Builder, addr int, inst machine.Instruction, opts *FormatOptions) {
	prefix := ""
	if opts.ShowAddresses {
		prefix = fmt.Sprintf("%d:", addr)
	}
	b.WriteString(padTo(prefix, opts.MnemonicColumn))

	mnemonic := inst.Op.String()
	operand := operandText(inst)
	if operand == "" {
		b.WriteString(mnemonic)
		b.WriteString("\n")
		return
	}
	b.WriteString(padTo(mnemonic, opts.OperandColumn-opts.MnemonicColumn))
	b.WriteString(operand)
	b.WriteString("\n")
}

func padTo(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}

func instructionText(inst machine.Instruction) string {
	return inst.String()
}

func operandText(inst machine.Instruction) string {
	switch {
	case inst.Op.HasRegisterOperand():
		return inst.Reg.String()
	case inst.Op.HasLineOperand():
		return fmt.Sprintf("%d", inst.Line)
	default:
		return ""
	}
}
