// Package config provides the configuration system for cuaderno.
//
// Settings merge from four layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Runtime overrides (Set) │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment (CUADERNO_*)│
//	├─────────────────────────────┤
//	│  2. Settings file           │  ← ~/.config/cuaderno/settings.toml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The settings file may be TOML or YAML; discovery tries settings.toml,
// settings.yaml, settings.yml in the config directory. When watching is
// enabled the file layer reloads automatically on change and OnReload
// handlers fire, so thresholds like the history coalescing delay can be
// tuned against a running composer.
//
// # Sub-packages
//
//   - loader: settings file parsing (TOML, YAML) and env variables
//   - watcher: fsnotify-based live reload with debounced delivery
//
// # Basic Usage
//
//	cfg := config.New()
//	if err := cfg.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cfg.Close()
//
//	ed := cfg.Editor()
//	recorder := history.NewRecorder(hist, clock,
//	    history.WithCharThreshold(ed.HistoryCoalesceChars),
//	    history.WithDelay(ed.HistoryCoalesceDelay))
//
// # Configuration Files
//
//	# ~/.config/cuaderno/settings.toml
//	[editor]
//	indentWidth = 4
//	historyCoalesceDelay = "800ms"
//
//	[translation]
//	provider = "google"
//	targetLang = "en"
//
// API keys are best passed through the environment (CUADERNO_API_KEY,
// CUADERNO_OPENAI_KEY, CUADERNO_ANTHROPIC_KEY, CUADERNO_GEMINI_KEY)
// rather than written into the settings file.
package config
