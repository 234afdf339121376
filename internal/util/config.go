package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileName     = "lox.toml"
	DefaultHistoryFile = ".lox_history"
	DefaultPrompt      = "> "
)

// DebugAST formats accepted by the -debug-ast flag.
const (
	DebugASTNone = ""
	DebugASTText = "text"
	DebugASTJSON = "json"
	DebugASTYAML = "yaml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	LoxHome   string `toml:"-"`

	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	DebugAST    string `toml:"debug_ast"`
	JournalDSN  string `toml:"journal_dsn"`
	HistoryFile string `toml:"history_file"`
	Prompt      string `toml:"prompt"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel: "none",
		Prompt:   DefaultPrompt,
	}
}

// LoadConfig decodes a TOML file over cfg. Keys missing from the file keep
// the value already in cfg.
func LoadConfig(path string, cfg *Configuration) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to load config '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in config '%s': %v", path, undecoded)
	}
	return cfg.Validate()
}

// LoadHomeConfig loads $LOX_HOME/lox.toml when it exists. A missing file is
// not an error.
func LoadHomeConfig(cfg *Configuration) error {
	if cfg.LoxHome == "" {
		return nil
	}
	path := filepath.Join(cfg.LoxHome, ConfigFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return LoadConfig(path, cfg)
}

func (c *Configuration) Validate() error {
	switch c.DebugAST {
	case DebugASTNone, DebugASTText, DebugASTJSON, DebugASTYAML:
	default:
		return fmt.Errorf("invalid debug_ast format %q: expected text, json or yaml", c.DebugAST)
	}
	return nil
}

// HistoryPath resolves where the prompt keeps its line history, defaulting
// to a file in the user's home directory.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultHistoryFile)
}
