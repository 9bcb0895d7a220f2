package assistant

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLen = 2
	maxNameLen = 30
)

var (
	namePattern = regexp.MustCompile(`(?i)(?:^|[\s,.!?])(?:meu nome é|meu nome e|me chamo|pode me chamar de|eu sou(?:\s+[oa])?|sou\s+[oa]|my name is|call me|i am|i'm)\s+(\p{L}+)`)

	recordIDPattern = regexp.MustCompile(`(?i)\bEVT-\d{14}-\d{4}\b`)

	greetings = []string{"oi", "olá", "ola", "hey", "hello", "opa", "e aí", "e ai", "eai", "bom dia", "boa tarde", "boa noite"}

	introductionPhrases = []string{
		"meu nome é", "meu nome e", "me chamo", "pode me chamar de",
		"sou o", "sou a", "eu sou", "my name is", "call me", "i am", "i'm",
	}
)

// ExtractName finds a personal name in text. Introduction phrases are tried
// first; a message that is a single word other than a greeting is taken as
// the name itself. The result is capitalized.
func ExtractName(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}

	if m := namePattern.FindStringSubmatch(trimmed); m != nil {
		if name, ok := normalizeName(m[1]); ok {
			return name, true
		}
	}

	words := strings.Fields(trimmed)
	if len(words) != 1 {
		return "", false
	}
	word := strings.TrimRight(words[0], ".,!?;:")
	if IsGreeting(word) {
		return "", false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return normalizeName(word)
}

func normalizeName(word string) (string, bool) {
	n := utf8.RuneCountInString(word)
	if n < minNameLen || n > maxNameLen {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:]), true
}

// IsGreeting reports whether text is a bare greeting such as "oi" or
// "bom dia!", possibly followed by more words after a separator.
func IsGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, g := range greetings {
		if lower == g {
			return true
		}
		if !strings.HasPrefix(lower, g) {
			continue
		}
		rest := lower[len(g):]
		if strings.Trim(rest, "!.?") == "" {
			return true
		}
		switch rest[0] {
		case ' ', ',', '!':
			return true
		}
	}
	return false
}

// ContainsSelfIntroduction reports whether text contains an introduction
// phrase, whether or not a usable name follows it.
func ContainsSelfIntroduction(text string) bool {
	padded := " " + strings.Join(strings.Fields(strings.ToLower(text)), " ") + " "
	for _, phrase := range introductionPhrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// ExtractRecordIDs returns every event id in text, upper-cased, in order of
// first appearance and without duplicates.
func ExtractRecordIDs(text string) []string {
	matches := recordIDPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	var ids []string
	for _, m := range matches {
		id := strings.ToUpper(m)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
