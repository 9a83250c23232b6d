package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

// TUI is a tcell/tview front end over a Debugger, built from a
// tview.Flex layout of panels scoped to the register machine's surface:
// one Listing panel stands in for separate source and disassembly
// panels, since the compiled listing already is the mnemonic form and
// there is nothing to disassemble, and there is no call stack to show.
// Registers is eight named cells rather than a larger CPU register file.
type TUI struct {
	Debugger *Debugger

	App            *tview.Application
	MainLayout     *tview.Flex
	ListingView    *tview.TextView
	RegisterView   *tview.TextView
	BreakWatchView *tview.TextView
	OutputView     *tview.TextView
	CommandInput   *tview.InputField
}

// NewTUI builds a TUI over dbg. Call Run to start the event loop.
func NewTUI(dbg *Debugger) *TUI {
	return newTUI(dbg, tview.NewApplication())
}

// NewTUIWithScreen builds a TUI bound to an explicit tcell.Screen, so tests
// can drive it against a tcell.NewSimulationScreen instead of a real
// terminal.
func NewTUIWithScreen(dbg *Debugger, screen tcell.Screen) *TUI {
	app := tview.NewApplication().SetScreen(screen)
	return newTUI(dbg, app)
}

func newTUI(dbg *Debugger, app *tview.Application) *TUI {
	t := &TUI{Debugger: dbg, App: app}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.ListingView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.ListingView.SetBorder(true).SetTitle(" Listing ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.BreakWatchView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakWatchView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("(impc-dbg) ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.BreakWatchView, 0, 1, false)

	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.ListingView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10, tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.OutputView.Clear()
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.CommandInput.SetText("")
	t.executeCommand(cmd)
}

func (t *TUI) executeCommand(cmd string) {
	if cmd == "quit" || cmd == "q" || cmd == "exit" {
		t.App.Stop()
		return
	}

	if err := t.Debugger.ExecuteCommand(cmd); err != nil {
		t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if out := t.Debugger.GetOutput(); out != "" {
		t.WriteOutput(out)
	}

	t.runUntilPause()
	t.RefreshAll()
}

// runUntilPause single-steps the VM, mirroring the CLI's loop in
// interface.go, until ShouldBreak fires or the program halts. The display
// refreshes only every DisplayUpdateFrequency cycles during a free run so a
// long loop does not thrash the terminal.
func (t *TUI) runUntilPause() {
	cycles := 0
	for t.Debugger.Running {
		if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
			t.Debugger.Running = false
			t.WriteOutput(fmt.Sprintf("stopped: %s at address %d\n", reason, t.Debugger.VM.PC))
			break
		}

		halted, err := t.Debugger.VM.Step()
		if err != nil {
			t.WriteOutput(fmt.Sprintf("runtime error: %v\n", err))
			t.Debugger.Running = false
			break
		}
		if halted {
			t.Debugger.Running = false
			t.WriteOutput("program halted\n")
			break
		}

		cycles++
		if cycles%DisplayUpdateFrequency == 0 {
			t.RefreshAll()
		}
	}
}

// WriteOutput appends text to the output panel.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current Debugger state.
func (t *TUI) RefreshAll() {
	t.UpdateListingView()
	t.UpdateRegisterView()
	t.UpdateBreakWatchView()
	t.App.Draw()
}

// UpdateListingView shows the compiled listing around the current PC,
// marking the current instruction and any enabled breakpoint.
func (t *TUI) UpdateListingView() {
	vm := t.Debugger.VM

	start := vm.PC - ListingLinesBefore
	if start < 0 {
		start = 0
	}
	end := vm.PC + ListingLinesAfter
	if end > len(vm.Program) {
		end = len(vm.Program)
	}

	var lines []string
	for addr := start; addr < end; addr++ {
		marker, color := "  ", "white"
		if addr == vm.PC {
			marker, color = "->", "yellow"
		}
		if bp := t.Debugger.Breakpoints.At(addr); bp != nil && bp.Enabled {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, addr, vm.Program[addr]))
	}
	t.ListingView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView shows the eight named registers and the PC.
func (t *TUI) UpdateRegisterView() {
	vm := t.Debugger.VM

	var lines []string
	for row := 0; row*RegistersPerRow < len(vm.Registers); row++ {
		var cols []string
		for col := 0; col < RegistersPerRow; col++ {
			r := machine.Register(row*RegistersPerRow + col)
			if int(r) >= len(vm.Registers) {
				break
			}
			cols = append(cols, fmt.Sprintf("%s: %-10d", r, vm.Registers[r]))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	lines = append(lines, "", fmt.Sprintf("pc: %d", vm.PC))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakWatchView lists every breakpoint and watchpoint with its
// current state.
func (t *TUI) UpdateBreakWatchView() {
	var lines []string

	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		lines = append(lines, "[yellow]no breakpoints[white]")
	} else {
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			lines = append(lines, fmt.Sprintf("b%d: [%s]%s[white] @ %d (hits %d)", bp.ID, color, status, bp.Address, bp.HitCount))
		}
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.All()
	if len(wps) == 0 {
		lines = append(lines, "[yellow]no watchpoints[white]")
	} else {
		for _, wp := range wps {
			target := fmt.Sprintf("cell %d", wp.Cell)
			if wp.IsRegister {
				target = wp.Register.String()
			}
			lines = append(lines, fmt.Sprintf("w%d: %s = %d (hits %d)", wp.ID, target, wp.LastValue, wp.HitCount))
		}
	}

	t.BreakWatchView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application. It blocks until the user quits.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]impc debugger[white]\n")
	t.WriteOutput("F1 help, F5 continue, F10/F11 step, Ctrl+C quit, Ctrl+L clear output\n\n")
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

// Stop ends the event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
