// Package validate holds the pure per-state input validators for the intake
// dialogue. Nothing in here touches session state.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9(][0-9 ().\-]{8,}$`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// Contact accepts a phone number (at least 10 digits, separators and country
// code allowed) or an email address. It returns the trimmed input on success.
func Contact(raw string) (string, bool) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", false
	}
	if emailPattern.MatchString(input) {
		return strings.ToLower(input), true
	}
	if phonePattern.MatchString(input) && len(digitPattern.FindAllString(input, -1)) >= 10 {
		return input, true
	}
	return "", false
}

var affirmativeTokens = []string{
	"yes", "yeah", "yep", "yup", "sure", "correct", "right", "ok", "okay", "absolutely",
	"si", "sí", "claro", "correcto", "afirmativo", "seguro", "dale",
}

var negativeTokens = []string{
	"no", "nope", "nah", "not", "never", "negative",
	"nunca", "tampoco", "jamás", "jamas", "ninguno", "ninguna",
}

// YesNo matches curated affirmative/negative keyword sets in either language
// against the tokens of the input. An input matching neither set, or both,
// is invalid rather than guessed at.
func YesNo(raw string) (bool, bool) {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return false, false
	}
	affirmative := containsAny(tokens, affirmativeTokens)
	negative := containsAny(tokens, negativeTokens)
	if affirmative == negative {
		return false, false
	}
	return affirmative, true
}

// Name accepts any non-trivial free-text string for name-like fields.
func Name(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if len([]rune(name)) < 2 {
		return "", false
	}
	return name, true
}

// FreeText accepts any non-empty string.
func FreeText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}
	return text, true
}

// PainLevel parses a 0-10 pain rating from the first number in the input.
func PainLevel(raw string) (int, bool) {
	match := numberPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	level, err := strconv.Atoi(match)
	if err != nil || level < 0 || level > 10 {
		return 0, false
	}
	return level, true
}

func tokenize(raw string) []string {
	return strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	// Accented vowels and ñ so Spanish keywords survive tokenisation.
	return strings.ContainsRune("áéíóúñü", r)
}

func containsAny(tokens []string, set []string) bool {
	for _, token := range tokens {
		for _, keyword := range set {
			if token == keyword {
				return true
			}
		}
	}
	return false
}
