package codegen

import "github.com/Maksym-Lukianenko123/impc/machine"

// genConst materializes value into reg bit by bit: RST, then for each bit
// of the binary representation (high to low) an optional INC followed by
// SHL, except the final bit which only gets INC (no trailing shift).
// Grounded on code_generator.py's gen_const.
func genConst(e *Emitter, value uint64, reg machine.Register) {
	e.emit(machine.OpRst, reg)
	if value == 0 {
		return
	}
	bits := bitsOf(value)
	for _, bit := range bits[:len(bits)-1] {
		if bit {
			e.emit(machine.OpInc, reg)
		}
		e.emit(machine.OpShl, reg)
	}
	if bits[len(bits)-1] {
		e.emit(machine.OpInc, reg)
	}
}

// bitsOf returns value's binary digits, most significant first.
func bitsOf(value uint64) []bool {
	var bits []bool
	for v := value; v > 0; v >>= 1 {
		bits = append([]bool{v&1 == 1}, bits...)
	}
	return bits
}
