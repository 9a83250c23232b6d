package debugger

// DisplayUpdateFrequency controls how often the TUI refreshes during a
// continuous run (every N cycles), keeping the terminal responsive without
// redrawing on every single instruction.
const DisplayUpdateFrequency = 200

// Listing view context: how many instructions of the linked program are
// shown before/after the current PC in the source/listing pane.
const (
	ListingLinesBefore = 10
	ListingLinesAfter  = 20
)

// RegistersPerRow is how many of the eight named registers the register
// pane places on one line.
const RegistersPerRow = 4
