package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "CUADERNO_")
	mapping map[string]string // Env var -> config path
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "CUADERNO_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
// Variables not listed here are still picked up by prefix scanning;
// the mapping exists for names whose path can't be derived mechanically.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"CUADERNO_LOG_LEVEL":   "logging.level",
		"CUADERNO_THEME":       "ui.theme",
		"CUADERNO_PROVIDER":    "translation.provider",
		"CUADERNO_TARGET_LANG": "translation.targetLang",
		"CUADERNO_NOTES_DIR":   "notes.dir",
		"CUADERNO_CONFIG_DIR":  "paths.configDir",
		// Sensitive settings
		"CUADERNO_API_KEY":       "translation.apiKey",
		"CUADERNO_OPENAI_KEY":    "translation.openaiApiKey",
		"CUADERNO_ANTHROPIC_KEY": "translation.anthropicApiKey",
		"CUADERNO_GEMINI_KEY":    "translation.geminiApiKey",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	// First, load explicitly mapped variables
	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, l.parseValue(val))
		}
	}

	// Then, scan for additional prefixed variables not in mapping
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		name := parts[0]
		value := parts[1]

		// Skip if already mapped
		if _, ok := l.mapping[name]; ok {
			continue
		}

		// Convert CUADERNO_EDITOR_INDENT_WIDTH to editor.indentWidth
		path := l.envToPath(name)
		setByPath(config, path, l.parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts CUADERNO_EDITOR_INDENT_WIDTH to editor.indentWidth.
// The first underscore-separated part becomes the section; the rest
// form one camelCase setting name.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)

	parts := strings.Split(name, "_")
	if len(parts) == 0 {
		return strings.ToLower(name)
	}

	result := make([]string, 0, 2)
	result = append(result, strings.ToLower(parts[0]))

	if len(parts) > 1 {
		settingParts := parts[1:]
		settingName := strings.ToLower(settingParts[0])
		for i := 1; i < len(settingParts); i++ {
			part := settingParts[i]
			if len(part) > 0 {
				settingName += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
			}
		}
		result = append(result, settingName)
	}

	return strings.Join(result, ".")
}

// parseValue attempts to parse the string value into an appropriate type.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	// Try bool
	lower := strings.ToLower(s)
	if lower == "true" || lower == "yes" || lower == "on" || s == "1" {
		return true
	}
	if lower == "false" || lower == "no" || lower == "off" || s == "0" {
		return false
	}

	// Try int
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Try float (only if it contains a decimal point to avoid misinterpreting ints)
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	// Try duration
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	// Try JSON array/object
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	if len(parts) > 0 {
		current[parts[len(parts)-1]] = value
	}
}
