// Package textnorm folds text written in different scripts and widths into
// one canonical form for matching.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	katakanaFirst = 'ァ' // U+30A1
	katakanaLast  = 'ヶ' // U+30F6
	katakanaIter  = 'ヽ' // U+30FD
	katakanaIterV = 'ヾ' // U+30FE
	kanaOffset    = 0x60
)

// KatakanaToHiragana maps a katakana rune onto its hiragana counterpart and
// leaves every other rune unchanged.
func KatakanaToHiragana(r rune) rune {
	switch {
	case r >= katakanaFirst && r <= katakanaLast:
		return r - kanaOffset
	case r == katakanaIter || r == katakanaIterV:
		return r - kanaOffset
	default:
		return r
	}
}

// newFolder builds the folding chain. Transformers keep state, so each call
// gets its own chain.
func newFolder() transform.Transformer {
	return transform.Chain(
		norm.NFKC,
		width.Fold,
		runes.Map(KatakanaToHiragana),
		cases.Fold(),
	)
}

// Fold returns the canonical matching form of s: NFKC-normalized, width
// folded, katakana mapped to hiragana, case folded, with runs of whitespace
// collapsed to one space.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(newFolder(), s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Lower is the unfolded query variant: whitespace-trimmed and lower-cased.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Join folds and concatenates name variants, skipping empty ones.
func Join(variants ...string) string {
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		if f := Fold(v); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
