package translate

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName renders a BCP 47 code as an English language name for
// prompt text. Unparseable codes pass through unchanged.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// systemPrompt instructs an LLM provider to act as a bare translation
// service. The line-count requirement matters: multi-line payloads are
// re-paired with their originals by position after the call.
func systemPrompt(targetLang string) string {
	return fmt.Sprintf("You are the translation service of a language-learning notebook. "+
		"Translate the user's text into %s. Reply with the translation only: "+
		"no commentary, no quotation marks, no markdown. Keep exactly the same "+
		"number of lines as the input, translating line by line.",
		languageName(targetLang))
}
