package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives a Debugger from stdin/stdout: a gdb-style prompt that reads
// one command at a time, then single-steps the VM until ShouldBreak fires
// or the program halts.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(impc-dbg) ")
		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("exiting debugger")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if out := dbg.GetOutput(); out != "" {
			fmt.Print(out)
		}

		for dbg.Running {
			if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
				dbg.Running = false
				fmt.Printf("stopped: %s at address %d\n", reason, dbg.VM.PC)
				break
			}

			halted, err := dbg.VM.Step()
			if err != nil {
				fmt.Printf("runtime error: %v\n", err)
				dbg.Running = false
				break
			}
			if halted {
				dbg.Running = false
				fmt.Println("program halted")
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI launches the tcell/tview single-stepper over dbg.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
