package debugger

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimulationTUI(t *testing.T) *TUI {
	t.Helper()

	vm := newTestVM()
	dbg := NewDebugger(vm, 10)

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)

	return NewTUIWithScreen(dbg, screen)
}

// executeCommand runs synchronously, not on a goroutine, because a
// register-machine debugging session never blocks on a slow memory or
// expression evaluation.
func TestTUI_ExecuteCommandRunsHelpSynchronously(t *testing.T) {
	tui := newSimulationTUI(t)

	tui.executeCommand("help")

	if !strings.Contains(tui.Debugger.LastCommand, "help") {
		t.Fatalf("expected LastCommand to record 'help', got %q", tui.Debugger.LastCommand)
	}
}

func TestTUI_HandleCommandClearsInputField(t *testing.T) {
	tui := newSimulationTUI(t)
	tui.CommandInput.SetText("registers")

	tui.handleCommand(tcell.KeyEnter)

	if got := tui.CommandInput.GetText(); got != "" {
		t.Fatalf("expected the command input to be cleared, got %q", got)
	}
}

func TestTUI_RefreshAllPopulatesListingAndRegisterViews(t *testing.T) {
	tui := newSimulationTUI(t)
	tui.RefreshAll()

	if tui.RegisterView.GetText(true) == "" {
		t.Fatalf("expected the register view to show something after RefreshAll")
	}
}

func TestTUI_ExecuteCommandBreakRegistersABreakpoint(t *testing.T) {
	tui := newSimulationTUI(t)

	tui.executeCommand("break 0")
	if tui.Debugger.Breakpoints.Count() != 1 {
		t.Fatalf("expected the break command to register a breakpoint")
	}
}
