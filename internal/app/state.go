package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State paths within the JSON document.
const (
	statePreferredLanguage = "translation.preferredLanguage"
	stateDraft             = "composer.draft"
)

// ErrNoStatePath indicates the state file path is empty.
var ErrNoStatePath = errors.New("state path is empty")

// State persists small bits of user state across runs: the preferred
// translation language and the unsent composer draft. It lives in a
// JSON file next to the settings so hand inspection stays easy, and
// unknown keys written by other versions are carried through untouched.
type State struct {
	mu   sync.Mutex
	path string
	doc  []byte
}

// OpenState reads the state file at path. A missing file starts empty;
// a file that does not hold a JSON object is discarded and started
// fresh. Read failures other than absence are returned.
func OpenState(path string) (*State, error) {
	if path == "" {
		return nil, ErrNoStatePath
	}

	s := &State{path: path, doc: []byte("{}")}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject() {
		s.doc = data
	}
	return s, nil
}

// newState returns an empty in-memory state bound to path. Bootstrap
// falls back to it when the existing file cannot be read.
func newState(path string) *State {
	return &State{path: path, doc: []byte("{}")}
}

// Path returns the state file path.
func (s *State) Path() string {
	return s.path
}

// PreferredLanguage returns the persisted target language, or empty.
func (s *State) PreferredLanguage() string {
	return s.get(statePreferredLanguage)
}

// SetPreferredLanguage persists the target language.
func (s *State) SetPreferredLanguage(lang string) error {
	return s.set(statePreferredLanguage, lang)
}

// Draft returns the persisted composer draft, or empty.
func (s *State) Draft() string {
	return s.get(stateDraft)
}

// SetDraft persists the composer draft. An empty draft removes the
// key rather than storing an empty string.
func (s *State) SetDraft(text string) error {
	if text == "" {
		return s.delete(stateDraft)
	}
	return s.set(stateDraft, text)
}

func (s *State) get(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gjson.GetBytes(s.doc, path).String()
}

func (s *State) set(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.SetBytes(s.doc, path, value)
	if err != nil {
		return fmt.Errorf("set state %s: %w", path, err)
	}
	return s.saveLocked(doc)
}

func (s *State) delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.DeleteBytes(s.doc, path)
	if err != nil {
		return fmt.Errorf("delete state %s: %w", path, err)
	}
	return s.saveLocked(doc)
}

// saveLocked writes doc through a temp file so a crash mid-write never
// leaves a truncated state file. Callers must hold the lock.
func (s *State) saveLocked(doc []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	s.doc = doc
	return nil
}
