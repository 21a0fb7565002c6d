package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/oarkflow/log"
	"github.com/peterh/liner"

	nexus "github.com/nexus-veil/nexus"
)

const (
	appName     = "nexus"
	historyFile = ".nexus_history"
)

var logger = &log.DefaultLogger

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	logger.Level = log.InfoLevel
	args := make([]string, 0, len(os.Args)-1)
	for _, a := range os.Args[1:] {
		if a == "--verbose" || a == "-v" {
			logger.Level = log.DebugLevel
			continue
		}
		args = append(args, a)
	}

	if len(args) == 0 {
		os.Exit(cmdRepl(nil))
	}

	cmd := args[0]
	switch cmd {
	case "run":
		os.Exit(cmdRun(args[1:]))
	case "compile":
		os.Exit(cmdCompile(args[1:]))
	case "repl":
		os.Exit(cmdRepl(args[1:]))
	case "version":
		fmt.Printf("%s %s (built %s)\n", appName, nexus.Version, nexus.BuildDate)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`%s %s

Usage:
  %s run <file.nv|file.nvast>       Run a script or a compiled program.
  %s compile <file.nv> [-o <out>]   Compile a script to a .nvast program.
  %s repl                           Start the REPL (default with no command).
  %s version                        Print the version.

Common flags:
  --config <path>                   Config file (default ~/.nexus.yaml).
  --verbose, -v                     Debug-level diagnostics on stderr.

`, appName, nexus.Version, appName, appName, appName, appName)
}

// setupInterpreter builds an interpreter configured per cfg.
func setupInterpreter(cfg Config) *nexus.Interpreter {
	ip := nexus.NewInterpreter()
	ip.MaxCallDepth = cfg.MaxDepth
	if cfg.CacheBytes > 0 {
		if cache, err := nexus.NewProgramCache(cfg.CacheBytes); err == nil {
			ip.Programs = cache
		} else {
			logger.Warn().Err(err).Msg("program cache disabled")
		}
	}
	logger.Debug().Int("max_depth", cfg.MaxDepth).Int64("cache_bytes", cfg.CacheBytes).
		Msg("interpreter ready")
	return ip
}

func loadConfigOrWarn(path string) Config {
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("using default configuration")
	}
	return cfg
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.nv|file.nvast>\n", appName)
		return 2
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	cfg := loadConfigOrWarn(*configPath)
	ip := setupInterpreter(cfg)

	if strings.HasSuffix(file, ".nvast") {
		prog, err := nexus.DecodeProgram(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s: %v\n", appName, file, err)
			return 1
		}
		if _, err := ip.EvalProgram(prog, nil); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}
		return 0
	}

	src := string(data)
	if _, err := ip.EvalSource(src); err != nil {
		fmt.Fprintln(os.Stderr, red(nexus.WrapErrorWithName(err, file, src).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	out := fs.String("o", "", "output path (default <file>.nvast)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s compile <file.nv> [-o <out>]\n", appName)
		return 2
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}
	src := string(data)
	start := time.Now()

	prog, err := nexus.ParseProgram(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(nexus.WrapErrorWithName(err, file, src).Error()))
		return 1
	}

	encoded, err := nexus.EncodeProgram(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: encode %s: %v\n", appName, file, err)
		return 1
	}

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(file, filepath.Ext(file)) + ".nvast"
	}

	// Concurrent compiles of the same target serialize on a sidecar lock.
	fl := flock.New(outPath + ".lock")
	if err := fl.Lock(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: lock %s: %v\n", appName, outPath, err)
		return 1
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.WriteFile(outPath, append(encoded, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write %s: %v\n", appName, outPath, err)
		return 1
	}
	logger.Info().Str("in", file).Str("out", outPath).Msg("compiled")
	logger.Debug().Int("bytes", len(encoded)).Dur("elapsed", time.Since(start)).
		Msg("compile detail")
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := loadConfigOrWarn(*configPath)
	nexus.EnableColor = cfg.Color

	fmt.Printf("%s %s\nCtrl+C cancels input, Ctrl+D exits. Type exit or quit to leave.\n",
		appName, nexus.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(cfg.History); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(cfg.History); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := setupInterpreter(cfg)

	for {
		code, ok := readByParseProbe(ln, cfg.Prompt, cfg.ContPrompt)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return 0
		}

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(nexus.WrapErrorWithSource(err, code).Error()))
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
			continue
		}
		if v.Tag != nexus.VTNull {
			fmt.Println(nexus.FormatValue(v))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe accumulates lines until the buffer parses, or fails with
// an error that is not just premature end of input.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := nexus.ParseProgramInteractive(src); perr == nil || !nexus.IsIncomplete(perr) {
			return src, true
		}
	}
}
