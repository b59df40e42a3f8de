// Package textnorm prepares free text for the recommender's vectorizer.
// Manuscripts and dataset rows go through the same pipeline so their terms
// line up with the vectorizer vocabulary.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/analysis"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/analysis/lang/fr"
	"github.com/blevesearch/bleve/analysis/token/porter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Language is the stemming language chosen for a text.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
)

var (
	lower = cases.Lower(language.Und)

	englishStop = mustTokenMap(en.EnglishStopWords)
	frenchStop  = mustTokenMap(fr.FrenchStopWords)

	stemmers = map[Language]analysis.TokenFilter{
		English: porter.NewPorterStemmer(),
		French:  fr.NewFrenchLightStemmerFilter(),
	}
)

func mustTokenMap(words []byte) analysis.TokenMap {
	m := analysis.NewTokenMap()
	if err := m.LoadBytes(words); err != nil {
		panic(err)
	}
	return m
}

// Normalize runs the full pipeline: Clean, then stopword removal and
// stemming in the language Detect picks for the cleaned words.
func Normalize(text string) string {
	words := strings.Fields(Clean(text))
	lang := Detect(words)
	return strings.Join(Stem(removeStopwords(words), lang), " ")
}

// Clean composes text to NFC, lowercases it, and drops digits and any rune
// that is neither a word character nor whitespace. Punctuation is removed
// without inserting a space, so "state-of-the-art" becomes "stateoftheart".
func Clean(text string) string {
	text = lower.String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Detect picks French when the words hold more French than English
// stopwords, English otherwise.
func Detect(words []string) Language {
	var nEN, nFR int
	for _, w := range words {
		if englishStop[w] {
			nEN++
		}
		if frenchStop[w] {
			nFR++
		}
	}
	if nFR > nEN {
		return French
	}
	return English
}

// IsStopword reports whether the lowercase word is an English or French
// stopword.
func IsStopword(word string) bool {
	return englishStop[word] || frenchStop[word]
}

// RemoveStopwords drops English and French stopwords and joins the
// remaining words with single spaces.
func RemoveStopwords(text string) string {
	return strings.Join(removeStopwords(strings.Fields(text)), " ")
}

func removeStopwords(words []string) []string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	return kept
}

// Stem reduces each word with the stemmer for lang. Unknown languages
// fall back to English.
func Stem(words []string, lang Language) []string {
	f, ok := stemmers[lang]
	if !ok {
		f = stemmers[English]
	}

	stream := make(analysis.TokenStream, len(words))
	for i, w := range words {
		stream[i] = &analysis.Token{Term: []byte(w), Position: i + 1, Type: analysis.AlphaNumeric}
	}
	stream = f.Filter(stream)

	out := make([]string, len(stream))
	for i, tok := range stream {
		out[i] = string(tok.Term)
	}
	return out
}
