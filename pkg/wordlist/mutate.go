package wordlist

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// mutationSuffixes are appended to every base word.
var mutationSuffixes = []string{"1", "123", "!", "2025"}

var leet = strings.NewReplacer(
	"a", "@", "A", "@",
	"e", "3", "E", "3",
	"i", "1", "I", "1",
	"o", "0", "O", "0",
	"s", "$", "S", "$",
)

// Mutate expands each word into common password variants: the word itself,
// lower, upper and title case, a leet substitution and the word with
// numeric or punctuation suffixes. Variants of one word stay together and
// follow the input order. Exact repeats are dropped.
func Mutate(words []string) []string {
	title := cases.Title(language.English)
	out := make([]string, 0, len(words)*(5+len(mutationSuffixes)))
	seen := make(map[string]struct{}, cap(out))

	add := func(w string) {
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	for _, w := range words {
		add(w)
		add(strings.ToLower(w))
		add(strings.ToUpper(w))
		add(title.String(strings.ToLower(w)))
		add(leet.Replace(w))
		for _, s := range mutationSuffixes {
			add(w + s)
		}
	}
	return out
}
