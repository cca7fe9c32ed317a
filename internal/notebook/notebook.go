// Package notebook appends sent notes to a local markdown file.
//
// Each entry is a level-two heading carrying the send time and a
// stable id, followed by the note text verbatim. The format survives
// hand editing: anything before the first entry heading is preamble,
// and unparsable headings fall back to body text.
package notebook

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmoreno/cuaderno/internal/sched"
)

// Common errors for notebook operations.
var (
	ErrEmptyEntry = errors.New("entry is empty")
	ErrNoPath     = errors.New("notebook path is empty")
)

// title is written once to a fresh notebook file.
const title = "# Cuaderno\n"

// Entry is one sent note.
type Entry struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Text      string
}

// Book is an append-only notebook backed by a markdown file. The file
// is opened per append, so concurrent processes interleave whole
// entries rather than partial writes.
type Book struct {
	mu    sync.Mutex
	path  string
	clock sched.Clock
	newID func() uuid.UUID
}

// Option configures a Book.
type Option func(*Book)

// WithClock substitutes the time source used for entry timestamps.
func WithClock(clock sched.Clock) Option {
	return func(b *Book) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithIDSource substitutes the entry id generator.
func WithIDSource(fn func() uuid.UUID) Option {
	return func(b *Book) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// Open prepares a notebook at path, creating parent directories. The
// file itself is created on first append.
func Open(path string, opts ...Option) (*Book, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create notebook dir: %w", err)
		}
	}

	b := &Book{
		path:  path,
		clock: sched.System(),
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Path returns the notebook file path.
func (b *Book) Path() string {
	return b.path
}

// Append writes text as a new entry and returns it. Surrounding
// whitespace is trimmed; whitespace-only text is rejected with
// ErrEmptyEntry.
func (b *Book) Append(text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyEntry
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("open notebook: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return Entry{}, fmt.Errorf("stat notebook: %w", err)
	}

	e := Entry{
		ID:        b.newID(),
		CreatedAt: b.clock.Now().UTC(),
		Text:      text,
	}

	var sb strings.Builder
	if st.Size() == 0 {
		sb.WriteString(title)
	}
	sb.WriteString("\n## ")
	sb.WriteString(e.CreatedAt.Format(time.RFC3339))
	sb.WriteString(" {#")
	sb.WriteString(e.ID.String())
	sb.WriteString("}\n\n")
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString(escapeLine(line))
		sb.WriteByte('\n')
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return Entry{}, fmt.Errorf("append notebook: %w", err)
	}
	if err := f.Close(); err != nil {
		return Entry{}, fmt.Errorf("close notebook: %w", err)
	}
	return e, nil
}

// Entries reads the notebook back. A notebook that has never been
// appended to yields no entries and no error.
func (b *Book) Entries() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open notebook: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads entries from r. Content before the first entry heading
// is preamble and is skipped; heading-shaped lines that fail to parse
// are kept as body text.
func Parse(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var entries []Entry
	var cur *Entry
	var body []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(strings.Join(body, "\n"))
		entries = append(entries, *cur)
		cur, body = nil, nil
	}

	for sc.Scan() {
		line := sc.Text()
		if e, ok := parseHeading(line); ok {
			flush()
			cur = &e
			continue
		}
		if cur == nil {
			continue
		}
		body = append(body, unescapeLine(line))
	}
	flush()

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read notebook: %w", err)
	}
	return entries, nil
}

// parseHeading decodes "## <RFC3339> {#<uuid>}".
func parseHeading(line string) (Entry, bool) {
	rest, ok := strings.CutPrefix(line, "## ")
	if !ok {
		return Entry{}, false
	}
	rest, ok = strings.CutSuffix(strings.TrimRight(rest, " "), "}")
	if !ok {
		return Entry{}, false
	}
	stamp, anchor, ok := strings.Cut(rest, " {#")
	if !ok {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return Entry{}, false
	}
	id, err := uuid.Parse(anchor)
	if err != nil {
		return Entry{}, false
	}
	return Entry{ID: id, CreatedAt: ts}, true
}

// escapeLine guards body lines that would read as markdown headings.
func escapeLine(line string) string {
	if strings.HasPrefix(line, "#") {
		return "\\" + line
	}
	return line
}

func unescapeLine(line string) string {
	if strings.HasPrefix(line, "\\#") {
		return line[1:]
	}
	return line
}
