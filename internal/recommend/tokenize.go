package recommend

import (
	"strings"
	"unicode"
)

// englishStopWords is a compact English stop-word list applied before TF-IDF.
var englishStopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all also am an and any are as at be because been
		before being below between both but by can cannot could did do does doing down during
		each either else every few for from further get had has have having he her here hers
		herself him himself his how however if in into is it its itself just least less many
		may me might more most much must my myself neither no nor not now of off often on once
		one only or other our ours ourselves out over own per perhaps rather same she should
		since so some such than that the their theirs them themselves then there these they
		this those though through thus to too under until up upon us very via was we were what
		when where whether which while who whom whose why will with within without would yet
		you your yours yourself yourselves`) {
		englishStopWords[w] = struct{}{}
	}
}

// tokenize lowercases text and returns runs of two or more letters or digits,
// dropping stop words.
func tokenize(text string, stop map[string]struct{}) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, ok := stop[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func stopWordSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopWords)+len(extra))
	for w := range englishStopWords {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
