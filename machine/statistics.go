package machine

import "encoding/json"

// Statistics tracks per-opcode execution counts, grounded on
// vm/statistics.go's PerformanceStatistics (reduced to what a register
// machine with no function/branch-prediction model needs).
type Statistics struct {
	Enabled           bool
	TotalInstructions uint64
	OpcodeCounts      map[string]uint64
}

// NewStatistics creates an enabled Statistics collector.
func NewStatistics() *Statistics {
	return &Statistics{Enabled: true, OpcodeCounts: make(map[string]uint64)}
}

// Record tallies one executed instruction.
func (s *Statistics) Record(inst Instruction) {
	if !s.Enabled {
		return
	}
	s.TotalInstructions++
	s.OpcodeCounts[inst.Op.String()]++
}

// JSON renders the collected counts as indented JSON, for the --stats CLI flag.
func (s *Statistics) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
