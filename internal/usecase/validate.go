package usecase

import "strings"

// lineTerminator marks the end of one example for the model tokenizer.
// Without it predictions differ from the offline fastText tooling.
const lineTerminator = "\n"

// ValidateText rejects empty text and text longer than maxTextLength bytes
func ValidateText(text string, maxTextLength int) error {
	if len(text) == 0 {
		return NewInputError("Empty text input")
	}
	if len(text) > maxTextLength {
		return NewInputError("Text too long: %d bytes", len(text))
	}
	return nil
}

// NormalizeText returns text ending with exactly one added line terminator,
// or text unchanged when it already ends with one.
func NormalizeText(text string) string {
	if strings.HasSuffix(text, lineTerminator) {
		return text
	}
	return text + lineTerminator
}
