package encryption

import (
	"bytes"
	"regexp"
)

// matchLines returns the lines of text matching re. Trailing NUL padding is ignored.
func matchLines(re *regexp.Regexp, text []byte) []string {
	text = bytes.TrimRight(text, "\x00")
	if len(text) == 0 {
		return nil
	}

	var matches []string

	for _, line := range bytes.Split(text, []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if re.Match(line) {
			matches = append(matches, string(line))
		}
	}

	return matches
}
