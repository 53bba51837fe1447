package casing

import (
	"strings"
	"unicode"
)

// Words splits s into its lower-cased words. Separators ('_', '-', ' ', '.')
// are dropped, and a new word starts at every lower-to-upper transition, at the
// last capital of an acronym followed by a lower-case letter, and between
// letters and digits.
func Words(s string) []string {
	runes := []rune(s)
	words := make([]string, 0, 4)

	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			continue
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case i > 0 && current.Len() > 0:
			prev := runes[i-1]
			if unicode.IsUpper(r) {
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || // previous letter is lowercase
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(prev)) { // or acronym ends here
					flush()
				}
			} else if unicode.IsDigit(r) != unicode.IsDigit(prev) {
				flush()
			}
		}

		current.WriteRune(unicode.ToLower(r))
	}
	flush()

	return words
}

func ToSnakeCase(s string) string {
	return strings.Join(Words(s), "_")
}

func ToKebabCase(s string) string {
	return strings.Join(Words(s), "-")
}

// ToCamelCase joins the words of s, capitalizing all but the first one:
// "favorite_toy" and "FavoriteToy" both become "favoriteToy".
func ToCamelCase(s string) string {
	var result strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			result.WriteString(w)
			continue
		}
		result.WriteString(UpperFirst(w))
	}

	return result.String()
}

func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}

func SnakeToTitleCase(s string) string {
	var result strings.Builder
	capitalize := true

	for _, r := range s {
		switch {
		case r == '_':
			// Replace underscore with space
			result.WriteRune(' ')
			capitalize = true
		case capitalize:
			// Capitalize the first letter after an underscore or at the beginning
			result.WriteRune(unicode.ToUpper(r))
			capitalize = false
		default:
			// Keep other letters as they are
			result.WriteRune(r)
		}
	}

	return result.String()
}
