package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"lox/internal/journal"
	"lox/internal/repl"
	"lox/internal/runner"
	"lox/internal/util"
)

// Exit codes follow sysexits.h.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
)

var (
	// Version is injected at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
	debugAST   string
	journalDSN string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Load configuration from a TOML file")
	// parser config
	flag.StringVar(&debugAST, "debug-ast", "", "Dump the AST before running: text, json, yaml")
	// journal config
	flag.StringVar(&journalDSN, "journal", "", "Record every run in a SQL journal (sqlite3://, mysql://, postgres://)")
	// log config
	flag.StringVar(&logLevel, "log-level", "none", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return ExitOK
	}

	if help {
		printHelp()
		return ExitOK
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitUsage
	}

	// Creates a new Logger that uses a JSONHandler to write to the log writer
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	if logWriter != os.Stderr {
		defer logWriter.Close()
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: lox [options] [script]")
		return ExitUsage
	}

	if stop := startCPUProfile(); stop != nil {
		defer stop()
	}

	session := runner.NewSession(os.Stdout, os.Stderr)
	session.DebugAST = config.DebugAST

	var j *journal.Journal
	if config.JournalDSN != "" {
		var code int
		if j, code = openJournal(config.JournalDSN); code != ExitOK {
			return code
		}
		session.Journal = j
		defer func() {
			if err := j.Close(); err != nil {
				slog.Warn("journal incomplete", slog.Any("error", err))
			}
		}()
	}

	if flag.NArg() == 1 {
		session.ShowContext = true
		return runFile(session, flag.Arg(0))
	}

	repl.Start(session, j, &config)
	return ExitOK
}

// loadConfiguration layers defaults, then the TOML file, then flags that
// were set explicitly on the command line.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.LoxHome = os.Getenv("LOX_HOME")

	if configPath != "" {
		if err := util.LoadConfig(configPath, &config); err != nil {
			return config, err
		}
	} else if err := util.LoadHomeConfig(&config); err != nil {
		return config, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "debug-ast":
			config.DebugAST = debugAST
		case "journal":
			config.JournalDSN = journalDSN
		}
	})

	return config, config.Validate()
}

// openJournal reports a malformed dsn as a usage error. Connection
// failures surface later, when the journal is flushed.
func openJournal(dsn string) (*journal.Journal, int) {
	j, err := journal.Open(dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, ExitUsage
	}
	return j, ExitOK
}

func runFile(session *runner.Session, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "file not found: %s\n", path)
		} else {
			fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", path, err)
		}
		return ExitNoInput
	}

	result := session.Run(path, string(src))
	switch {
	case result.HadError:
		return ExitDataErr
	case result.HadRuntimeError:
		return ExitSoftware
	}
	return ExitOK
}

// startCPUProfile profiles the whole process when LOX_CPU_PROFILE names a
// file. It returns nil when profiling is off or could not start.
func startCPUProfile() func() {
	profPath := os.Getenv("LOX_CPU_PROFILE")
	if profPath == "" {
		return nil
	}
	profFile, err := os.Create(profPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create CPU profile %q: %v\n", profPath, err)
		return nil
	}
	if err := pprof.StartCPUProfile(profFile); err != nil {
		fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
		_ = profFile.Close()
		return nil
	}
	return func() {
		pprof.StopCPUProfile()
		_ = profFile.Close()
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("lox version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: lox [options] [script]

Options:
  -config <path>     Load configuration from a TOML file. Default is $LOX_HOME/lox.toml.
  -debug-ast <fmt>   Dump the AST of each run to stderr: text, json or yaml.
  -journal <dsn>     Record every run in a SQL journal, e.g. sqlite3://runs.db.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Without a script, lox starts an interactive prompt. Type :help there for
the prompt commands.

Exit codes:
  64  usage error, bad config or malformed -journal dsn
  65  scan or parse error
  66  unreadable script
  70  runtime error

Examples:
  lox                           Start the prompt
  lox hello.lox                 Run a script
  lox -debug-ast=json hello.lox Dump the syntax tree, then run

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
