package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Section accessor methods return snapshot structs. Mutating the
// returned struct does not modify the underlying configuration. Use
// Config.Set() to update configuration values.

// EditorConfig provides type-safe access to editor settings.
type EditorConfig struct {
	// IndentWidth is the number of spaces the Tab command inserts.
	IndentWidth int

	// HistoryDepth is the maximum number of undo entries kept.
	HistoryDepth int

	// HistoryCoalesceChars is the cumulative character delta at which
	// typing is snapshotted immediately instead of waiting out the
	// coalescing delay.
	HistoryCoalesceChars int

	// HistoryCoalesceDelay is the typing quiet period after which a
	// pending snapshot is taken.
	HistoryCoalesceDelay time.Duration
}

// TranslationConfig provides type-safe access to translation settings.
type TranslationConfig struct {
	// Enabled enables the translation features.
	Enabled bool

	// Provider is the translation backend ("google", "openai",
	// "anthropic", "gemini").
	Provider string

	// APIKey is the key for the selected provider, resolved from the
	// generic translation.apiKey or the provider-specific key.
	APIKey string

	// Model overrides the provider's default model. Empty uses the
	// provider default.
	Model string

	// TargetLang is the BCP 47 tag translations are produced in.
	TargetLang string

	// AutoDelay is the selection quiet period before an automatic
	// translation fires.
	AutoDelay time.Duration

	// CacheTTL is how long translated text is reused before the
	// provider is asked again. Zero disables the cache.
	CacheTTL time.Duration

	// Timeout bounds a single provider call.
	Timeout time.Duration
}

// UIConfig provides type-safe access to UI settings.
type UIConfig struct {
	// Theme is the color theme name.
	Theme string

	// ShowStatusBar shows the status line at the bottom.
	ShowStatusBar bool

	// DimAnnotations renders the translated half of annotation pairs
	// in a dimmed style.
	DimAnnotations bool
}

// NotesConfig provides type-safe access to notebook settings.
type NotesConfig struct {
	// Dir is the directory notes are stored in.
	Dir string

	// File is the notebook file name within Dir.
	File string
}

// Path returns the full notebook file path.
func (n NotesConfig) Path() string {
	if filepath.IsAbs(n.File) {
		return n.File
	}
	return filepath.Join(n.Dir, n.File)
}

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the logging verbosity level ("debug", "info", "warn", "error").
	Level string

	// Format is the log format ("text", "json").
	Format string

	// File is the log file path (empty logs to stderr).
	File string
}

// Editor returns type-safe access to editor settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		IndentWidth:          c.getIntOr("editor.indentWidth", 4),
		HistoryDepth:         c.getIntOr("editor.historyDepth", 100),
		HistoryCoalesceChars: c.getIntOr("editor.historyCoalesceChars", 10),
		HistoryCoalesceDelay: c.getDurationOr("editor.historyCoalesceDelay", 800*time.Millisecond),
	}
}

// Translation returns type-safe access to translation settings.
func (c *Config) Translation() TranslationConfig {
	t := TranslationConfig{
		Enabled:    c.getBoolOr("translation.enabled", true),
		Provider:   c.getStringOr("translation.provider", "google"),
		Model:      c.getStringOr("translation.model", ""),
		TargetLang: c.getStringOr("translation.targetLang", "en"),
		AutoDelay:  c.getDurationOr("translation.autoDelay", 700*time.Millisecond),
		CacheTTL:   c.getDurationOr("translation.cacheTtl", 30*time.Minute),
		Timeout:    c.getDurationOr("translation.timeout", 10*time.Second),
	}
	t.APIKey = c.apiKeyFor(t.Provider)
	return t
}

// apiKeyFor resolves the API key for a provider. An explicit
// translation.apiKey wins over the provider-specific keys, which exist
// so every provider's key can live in the environment at once.
func (c *Config) apiKeyFor(provider string) string {
	if key := c.getStringOr("translation.apiKey", ""); key != "" {
		return key
	}
	switch strings.ToLower(provider) {
	case "openai":
		return c.getStringOr("translation.openaiApiKey", "")
	case "anthropic":
		return c.getStringOr("translation.anthropicApiKey", "")
	case "gemini":
		return c.getStringOr("translation.geminiApiKey", "")
	default:
		return ""
	}
}

// UI returns type-safe access to UI settings.
func (c *Config) UI() UIConfig {
	return UIConfig{
		Theme:          c.getStringOr("ui.theme", "dark"),
		ShowStatusBar:  c.getBoolOr("ui.showStatusBar", true),
		DimAnnotations: c.getBoolOr("ui.dimAnnotations", true),
	}
}

// Notes returns type-safe access to notebook settings.
func (c *Config) Notes() NotesConfig {
	n := NotesConfig{
		Dir:  c.getStringOr("notes.dir", ""),
		File: c.getStringOr("notes.file", "notes.md"),
	}
	if n.Dir == "" {
		n.Dir = defaultDataDir()
	}
	return n
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "text"),
		File:   c.getStringOr("logging.file", ""),
	}
}

// The getXOr helpers fall back to a default on any problem, recording
// type errors so misconfigurations are visible without failing reads.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}
