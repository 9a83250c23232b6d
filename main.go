// Command impc compiles the small imperative language (spec.md §3) into
// register-machine instruction listings, and optionally runs, debugs, or
// serves the result: a version/help/verbose flag set and a
// graceful-shutdown API server mode wired around this compiler's
// pipeline (parse, generate, run/debug).
package main

import (
	"context"
	"flag"
	"fmt"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Maksym-Lukianenko123/impc/api"
	"github.com/Maksym-Lukianenko123/impc/codegen"
	"github.com/Maksym-Lukianenko123/impc/config"
	"github.com/Maksym-Lukianenko123/impc/debugger"
	"github.com/Maksym-Lukianenko123/impc/loader"
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
	"github.com/Maksym-Lukianenko123/impc/tools"
)

// Version information; can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		outFile     = flag.String("o", "", "Output listing path (default: stdout)")
		configFile  = flag.String("config", "", "TOML config path (default: platform config dir)")
		runProgram  = flag.Bool("run", false, "Execute the compiled program after compiling")
		debugMode   = flag.Bool("debug", false, "Launch the TUI debugger instead of running to completion")
		apiServer   = flag.Bool("api-server", false, "Start the HTTP+WebSocket compile service")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		enableTrace = flag.Bool("trace", false, "Enable execution trace (requires -run)")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: stderr)")
		enableStats = flag.Bool("stats", false, "Enable execution statistics (requires -run)")
		statsFile   = flag.String("stats-file", "", "Statistics output file (default: stderr)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("impc %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		return
	}

	if *showHelp {
		printHelp()
		return
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one source file is required")
		flag.Usage()
		os.Exit(2)
	}
	sourcePath := args[0]

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(sourcePath) // #nosec G304 -- user-supplied source file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Fprintf(os.Stderr, "compiling %s\n", sourcePath)
	}

	table, err := parser.Parse(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	result, err := codegen.Generate(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if err := emitListing(result, table, *outFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if !*runProgram && !*debugMode {
		return
	}

	vm := loader.NewVM(result.Program, os.Stdin, os.Stdout)
	vm.MaxCycles = cfg.Execution.MaxCycles

	if *enableTrace {
		vm.Trace = machine.NewExecutionTrace(vm)
	}
	if *enableStats {
		vm.Stats = machine.NewStatistics()
	}

	if *debugMode {
		dbg := debugger.NewDebugger(vm, cfg.Debugger.HistorySize)
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runErr := vm.Run()

	if *enableTrace {
		if err := writeTrace(vm.Trace, *traceFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write trace: %v\n", err)
		}
	}
	if *enableStats {
		if err := writeStats(vm.Stats, *statsFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write statistics: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// emitListing writes the compiled program as a formatted listing, marking
// each procedure's entry line so tools.Format can annotate it.
func emitListing(result *codegen.Result, table *parser.ProcedureTable, outFile string) error {
	entryLines := make(map[int]string)
	for _, proc := range table.Procedures() {
		entryLines[proc.FirstLine] = proc.Name
	}
	listing := tools.Format(result.Program, entryLines, tools.DefaultFormatOptions())

	if outFile == "" {
		fmt.Print(listing)
		return nil
	}
	return os.WriteFile(outFile, []byte(listing), 0600)
}

func writeTrace(trace *machine.ExecutionTrace, path string) error {
	var b strings.Builder
	for _, entry := range trace.Entries {
		fmt.Fprintf(&b, "%d: %s  registers=%v\n", entry.Line, entry.Instruction.String(), entry.Registers)
	}
	if path == "" {
		fmt.Fprint(os.Stderr, b.String())
		return nil
	}
	return os.WriteFile(path, []byte(b.String()), 0600)
}

func writeStats(stats *machine.Statistics, path string) error {
	data, err := stats.JSON()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, string(data))
		return nil
	}
	return os.WriteFile(path, data, 0600)
}

// runAPIServer starts the HTTP+WebSocket compile service and blocks until
// it receives SIGINT/SIGTERM, then shuts down gracefully.
func runAPIServer(port int) {
	server := api.NewServer(port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "error: api server: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		fmt.Fprintln(os.Stderr, "shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: shutdown: %v\n", err)
			os.Exit(1)
		}
	}
}

func printHelp() {
	fmt.Println(`impc - compiler for the imperative procedure language

Usage:
  impc [flags] <source.imp>

Flags:
  -o <file>           output listing path (default: stdout)
  -config <file>      TOML config path
  -run                execute the compiled program after compiling
  -trace              enable execution trace (requires -run)
  -trace-file <file>  trace output file (default: stderr)
  -stats              enable execution statistics (requires -run)
  -stats-file <file>  statistics output file (default: stderr)
  -debug              launch the TUI debugger instead of running to completion
  -api-server         start the HTTP+WebSocket compile service
  -port <n>           API server port (default: 8080)
  -verbose            verbose output
  -version            show version information
  -help               show this help`)
}
