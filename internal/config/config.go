package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmoreno/cuaderno/internal/config/loader"
	"github.com/dmoreno/cuaderno/internal/config/watcher"
)

// Layer priorities, ascending. A higher-priority layer overrides the
// ones below it during merge.
const (
	priorityDefaults = 0
	priorityFile     = 50
	priorityEnv      = 100
	priorityOverride = 150
)

// layer is one source of settings. Layers merge in priority order.
type layer struct {
	name     string
	priority int
	data     map[string]any
}

// Config provides unified access to the cuaderno configuration.
// Settings come from built-in defaults, a settings file (TOML or
// YAML), CUADERNO_* environment variables, and runtime Set calls,
// in that order of precedence.
type Config struct {
	mu sync.RWMutex

	layers []*layer
	merged map[string]any // nil when a layer changed since the last merge

	watcher        *watcher.Watcher
	reloadHandlers []func(path string)

	configDir string
	file      string // settings file path; discovered during Load when unset
	envPrefix string

	enableWatcher bool

	// errs records type mismatches and other problems found while
	// reading settings, keyed by path.
	errs map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithConfigDir sets the configuration directory.
func WithConfigDir(dir string) Option {
	return func(c *Config) {
		c.configDir = dir
	}
}

// WithFile sets an explicit settings file path, bypassing discovery.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithEnvPrefix sets the environment variable prefix. The default is
// "CUADERNO_".
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithWatcher enables or disables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// New creates a new Config instance with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		envPrefix:     "CUADERNO_",
		enableWatcher: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.configDir == "" {
		c.configDir = defaultConfigDir()
	}

	return c
}

// Load loads configuration from all sources and, when enabled, starts
// watching the settings file for changes.
func (c *Config) Load(_ context.Context) error {
	c.mu.Lock()

	c.setLayerLocked("defaults", priorityDefaults, defaultConfig())

	path, data, err := c.loadSettingsLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.file = path
	if data != nil {
		c.setLayerLocked("file", priorityFile, data)
	}

	envData, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(envData) > 0 {
		c.setLayerLocked("env", priorityEnv, envData)
	}

	startWatcher := c.enableWatcher
	c.mu.Unlock()

	if startWatcher {
		c.startWatcher(path)
	}

	return nil
}

// loadSettingsLocked finds and parses the settings file. When no file
// exists yet, it returns the default TOML path with nil data so the
// watcher can pick the file up once it appears.
func (c *Config) loadSettingsLocked() (string, map[string]any, error) {
	if c.file != "" {
		data, err := loadFile(c.file)
		return c.file, data, err
	}

	candidates := []string{"settings.toml", "settings.yaml", "settings.yml"}
	for _, name := range candidates {
		path := filepath.Join(c.configDir, name)
		data, err := loadFile(path)
		if err != nil {
			return path, nil, err
		}
		if data != nil {
			return path, data, nil
		}
	}

	return filepath.Join(c.configDir, "settings.toml"), nil, nil
}

// loadFile parses a settings file by extension. Returns nil, nil when
// the file doesn't exist.
func loadFile(path string) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loader.NewYAMLLoader(path).Load()
	default:
		return loader.NewTOMLLoader(path).Load()
	}
}

// startWatcher wires live reload for the settings file. A watcher that
// cannot start degrades to a static configuration rather than failing
// the load.
func (c *Config) startWatcher(path string) {
	w, err := watcher.New()
	if err != nil {
		c.recordConfigError("watcher", err)
		return
	}
	w.OnChange(c.handleFileChange)
	if err := w.Watch(path); err != nil {
		c.recordConfigError("watcher", err)
	}
	w.Start()

	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
}

// Close shuts down the configuration system.
func (c *Config) Close() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// OnReload registers a handler called after the settings file layer
// has been replaced by a live reload. Handlers run outside the config
// lock and may read the new values freely.
func (c *Config) OnReload(fn func(path string)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.reloadHandlers = append(c.reloadHandlers, fn)
	c.mu.Unlock()
}

// handleFileChange reloads the settings layer when the watched file
// changes on disk.
func (c *Config) handleFileChange(event watcher.Event) {
	c.mu.Lock()

	switch event.Op {
	case watcher.OpRemove, watcher.OpRename:
		c.removeLayerLocked("file")
	default:
		data, err := loadFile(event.Path)
		if err != nil || data == nil {
			// A half-written or vanished file; keep the current layer.
			c.mu.Unlock()
			return
		}
		c.setLayerLocked("file", priorityFile, data)
	}

	handlers := make([]func(string), len(c.reloadHandlers))
	copy(handlers, c.reloadHandlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(event.Path)
	}
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	return getPath(c.snapshot(), path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// GetDuration returns a duration value at the given path. TOML and
// YAML carry durations as strings ("800ms"); bare numbers are read as
// milliseconds; the env loader may have parsed a time.Duration already.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: "string"}
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case float64:
		return time.Duration(val * float64(time.Millisecond)), nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// Set sets a value at the given path in the runtime override layer.
// Overrides outrank every file and environment setting and are not
// persisted.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ov := c.layerLocked("override")
	if ov == nil {
		ov = c.setLayerLocked("override", priorityOverride, make(map[string]any))
	}
	if err := setPath(ov.data, path, value); err != nil {
		return err
	}
	c.merged = nil
	return nil
}

// Merged returns a deep copy of the fully merged configuration.
func (c *Config) Merged() map[string]any {
	return loader.Clone(c.snapshot())
}

// File returns the settings file path in use (which may not exist yet).
func (c *Config) File() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file
}

// ConfigDir returns the configuration directory.
func (c *Config) ConfigDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configDir
}

// Validate checks the merged configuration for values the editor
// cannot run with. It returns all problems joined, or nil.
func (c *Config) Validate() error {
	var errs []error

	ed := c.Editor()
	if ed.IndentWidth < 1 {
		errs = append(errs, fmt.Errorf("%w: editor.indentWidth must be at least 1, got %d", ErrInvalidValue, ed.IndentWidth))
	}
	if ed.HistoryDepth < 1 {
		errs = append(errs, fmt.Errorf("%w: editor.historyDepth must be at least 1, got %d", ErrInvalidValue, ed.HistoryDepth))
	}
	if ed.HistoryCoalesceChars < 1 {
		errs = append(errs, fmt.Errorf("%w: editor.historyCoalesceChars must be at least 1, got %d", ErrInvalidValue, ed.HistoryCoalesceChars))
	}
	if ed.HistoryCoalesceDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: editor.historyCoalesceDelay must not be negative", ErrInvalidValue))
	}

	tr := c.Translation()
	if tr.Provider == "" {
		errs = append(errs, fmt.Errorf("%w: translation.provider must not be empty", ErrInvalidValue))
	}
	if tr.AutoDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: translation.autoDelay must not be negative", ErrInvalidValue))
	}
	if tr.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: translation.timeout must be positive", ErrInvalidValue))
	}

	lg := c.Logging()
	switch lg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: logging.level %q is not one of debug, info, warn, error", ErrInvalidValue, lg.Level))
	}

	return errors.Join(errs...)
}

// Errors returns the problems recorded while reading settings, keyed
// by setting path.
func (c *Config) Errors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]error, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// recordConfigError remembers a problem found while reading a setting.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errs == nil {
		c.errs = make(map[string]error)
	}
	c.errs[path] = err
}

// layerLocked finds a layer by name.
func (c *Config) layerLocked(name string) *layer {
	for _, l := range c.layers {
		if l.name == name {
			return l
		}
	}
	return nil
}

// setLayerLocked replaces or inserts a layer, keeping the slice
// sorted by ascending priority.
func (c *Config) setLayerLocked(name string, priority int, data map[string]any) *layer {
	c.merged = nil

	if l := c.layerLocked(name); l != nil {
		l.data = data
		return l
	}

	l := &layer{name: name, priority: priority, data: data}
	at := len(c.layers)
	for i, existing := range c.layers {
		if existing.priority > priority {
			at = i
			break
		}
	}
	c.layers = append(c.layers, nil)
	copy(c.layers[at+1:], c.layers[at:])
	c.layers[at] = l
	return l
}

// removeLayerLocked drops a layer by name.
func (c *Config) removeLayerLocked(name string) {
	for i, l := range c.layers {
		if l.name == name {
			c.layers = append(c.layers[:i], c.layers[i+1:]...)
			c.merged = nil
			return
		}
	}
}

// snapshot returns the merged view, rebuilding it when a layer has
// changed. The returned map is read-only once published, so callers
// may use it without holding the lock.
func (c *Config) snapshot() map[string]any {
	c.mu.RLock()
	m := c.merged
	c.mu.RUnlock()
	if m != nil {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.merged != nil {
		return c.merged
	}

	merged := make(map[string]any)
	for _, l := range c.layers {
		merged = loader.DeepMerge(merged, loader.Clone(l.data))
	}
	c.merged = merged
	return merged
}

// defaultConfigDir returns the default configuration directory.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cuaderno")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cuaderno")
}

// defaultDataDir returns the default data directory (notebook storage).
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cuaderno")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cuaderno")
}

// defaultConfig returns the built-in default values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"indentWidth":          4,
			"historyDepth":         100,
			"historyCoalesceChars": 10,
			"historyCoalesceDelay": "800ms",
		},
		"translation": map[string]any{
			"enabled":    true,
			"provider":   "google",
			"model":      "",
			"targetLang": "en",
			"autoDelay":  "700ms",
			"cacheTtl":   "30m",
			"timeout":    "10s",
		},
		"ui": map[string]any{
			"theme":          "dark",
			"showStatusBar":  true,
			"dimAnnotations": true,
		},
		"notes": map[string]any{
			"dir":  "",
			"file": "notes.md",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
			"file":   "",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = cm[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return ErrInvalidPath
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path, dropping empty segments.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	raw := strings.Split(path, ".")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
