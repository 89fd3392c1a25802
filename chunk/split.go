package chunk

import "strings"

// splitKeep splits text on sep, keeping the separator attached to the
// preceding segment. The returned segments concatenate to the input exactly.
func splitKeep(text, sep string) []string {
	if text == "" {
		return nil
	}

	var parts []string
	for {
		i := strings.Index(text, sep)
		if i < 0 {
			parts = append(parts, text)
			return parts
		}
		parts = append(parts, text[:i+len(sep)])
		text = text[i+len(sep):]
		if text == "" {
			return parts
		}
	}
}

// splitSentences splits text at sentence terminators (". ", "! ", "? ") and
// newlines, keeping the terminator attached to the preceding sentence.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var parts []string
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			parts = append(parts, string(runes[start:i+1]))
			start = i + 1
		case '.', '!', '?':
			if i+1 < len(runes) && runes[i+1] == ' ' {
				parts = append(parts, string(runes[start:i+2]))
				start = i + 2
				i++
			}
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

// forceSplit cuts text into consecutive slices of at most maxSize runes.
func forceSplit(text string, maxSize int) []string {
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

func runeLen(s string) int {
	return len([]rune(s))
}
