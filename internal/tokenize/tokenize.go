// Package tokenize provides the shared text normalizer used by every
// lexical evaluator, so that BM25, embedding similarity, and JD matching all
// agree on what a "word" is.
package tokenize

import (
	"regexp"
	"sort"
	"strings"
)

// A token is a maximal ASCII alphanumeric run or a maximal run of Hiragana,
// Katakana, or CJK unified ideographs. Input is lowercased first.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+|[ぁ-んァ-ン一-龥]+`)

// canonical folds common spelling variants onto one token so that the same
// concept scores identically across resumes and JDs.
var canonical = map[string]string{
	"iac":                  "iac",
	"infrastructureascode": "iac",
	"aws":                  "aws",
	"amazonwebservices":    "aws",
}

// Tokenize splits text into normalized lowercase tokens. It is idempotent:
// tokenizing a token yields the token itself.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(matches))
	for _, tok := range matches {
		if folded, ok := canonical[tok]; ok {
			tok = folded
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// SynonymMap maps a token to alternative phrasings that should be treated
// as equivalent during scoring.
type SynonymMap map[string][]string

// Expand returns the unique union of tokens and the tokenized synonyms of
// each token. Order is stable (input order, then sorted expansions). Input
// duplicates are dropped even when the map is empty, so scores do not shift
// when a synonym table is introduced.
func (m SynonymMap) Expand(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			expanded = append(expanded, tok)
		}
	}
	var extras []string
	for _, tok := range tokens {
		for _, alt := range m[tok] {
			for _, altTok := range Tokenize(alt) {
				if !seen[altTok] {
					seen[altTok] = true
					extras = append(extras, altTok)
				}
			}
		}
	}
	sort.Strings(extras)
	return append(expanded, extras...)
}

// Augment appends the deduplicated synonym expansions of text's tokens to
// the text itself, in sorted order, so TF-IDF vectors see the synonyms as
// extra terms. Returns text unchanged when nothing expands.
func (m SynonymMap) Augment(text string) string {
	if len(m) == 0 {
		return text
	}
	seen := make(map[string]bool)
	var extras []string
	for _, tok := range Tokenize(text) {
		for _, alt := range m[tok] {
			if !seen[alt] {
				seen[alt] = true
				extras = append(extras, alt)
			}
		}
	}
	if len(extras) == 0 {
		return text
	}
	sort.Strings(extras)
	return text + " " + strings.Join(extras, " ")
}
