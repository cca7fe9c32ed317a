package annotate

import "strings"

// Delimiter separates an original line from its translation inside the
// buffer text. It is a persisted wire format: saved notes round-trip
// through it, so consumers must treat the literal sequence as
// significant.
const Delimiter = " :: "

// lineBreak joins multiple originals into one service call. The
// translation service is expected to preserve it positionally, so the
// result can be split back into per-line translations.
const lineBreak = "\n"

// IsAnnotated returns true if text contains at least one annotation
// delimiter.
func IsAnnotated(text string) bool {
	return strings.Contains(text, Delimiter)
}

// OriginalOf returns the authoritative original segment of a line. For
// an annotated line that is everything left of the first delimiter;
// re-translation always re-derives from it, never from a prior
// translation, so repeated translations cannot drift.
func OriginalOf(line string) string {
	if i := strings.Index(line, Delimiter); i >= 0 {
		return line[:i]
	}
	return line
}

// Pair joins an original with its translation into one annotated line.
func Pair(original, translation string) string {
	return original + Delimiter + translation
}

// Originals splits text into logical lines and strips each line down
// to its original segment. Blank lines are preserved as blanks.
func Originals(text string) []string {
	lines := strings.Split(text, lineBreak)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = OriginalOf(line)
	}
	return out
}

// JoinForService collects the non-blank entries of originals into a
// single payload for one service call.
func JoinForService(originals []string) string {
	nonBlank := make([]string, 0, len(originals))
	for _, line := range originals {
		if line != "" {
			nonBlank = append(nonBlank, line)
		}
	}
	return strings.Join(nonBlank, lineBreak)
}

// MergeResult re-pairs originals with the service result. The result
// is split on the line-break marker and consumed one entry per
// non-blank original, in order. Blank originals stay blank. If the
// service returned fewer lines than were sent, the leftover originals
// are kept bare rather than paired with nothing.
func MergeResult(originals []string, serviceResult string) string {
	translations := strings.Split(serviceResult, lineBreak)

	merged := make([]string, len(originals))
	next := 0
	for i, original := range originals {
		if original == "" {
			merged[i] = ""
			continue
		}
		if next < len(translations) && translations[next] != "" {
			merged[i] = Pair(original, translations[next])
		} else {
			merged[i] = original
		}
		next++
	}
	return strings.Join(merged, lineBreak)
}

// Annotate translates a whole selection in one pass: extract the
// originals, and re-pair them with an already-fetched service result.
func Annotate(selection, serviceResult string) string {
	return MergeResult(Originals(selection), serviceResult)
}
