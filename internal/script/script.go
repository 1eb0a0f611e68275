// Package script provides lightweight Unicode script classification for OCR
// output. It is used to separate Japanese tokens from Latin noise before any
// similarity scoring happens.
package script

import "golang.org/x/text/unicode/norm"

// Rune ranges considered Japanese. CJK Unified Ideographs are capped at
// U+9FAF; the later Unicode extensions are effectively absent from the fonts
// this tool catalogs.
const (
	hiraganaLo = 0x3040
	hiraganaHi = 0x309F
	katakanaLo = 0x30A0
	katakanaHi = 0x30FF
	kanjiLo    = 0x4E00
	kanjiHi    = 0x9FAF
)

// IsJapanese reports whether s contains at least one Hiragana, Katakana or
// CJK Unified Ideograph code point. Empty strings are not Japanese.
func IsJapanese(s string) bool {
	for _, r := range s {
		if isHiragana(r) || isKatakana(r) || isKanji(r) {
			return true
		}
	}
	return false
}

// ContainsKana reports whether s contains Hiragana or Katakana.
func ContainsKana(s string) bool {
	for _, r := range s {
		if isHiragana(r) || isKatakana(r) {
			return true
		}
	}
	return false
}

// ContainsKanji reports whether s contains a CJK Unified Ideograph.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if isKanji(r) {
			return true
		}
	}
	return false
}

// NormalizeToken applies NFKC normalization to an OCR token. Tesseract
// occasionally emits half-width katakana (U+FF66..U+FF9F) which would
// otherwise escape the range checks above.
func NormalizeToken(s string) string {
	return norm.NFKC.String(s)
}

func isHiragana(r rune) bool { return r >= hiraganaLo && r <= hiraganaHi }
func isKatakana(r rune) bool { return r >= katakanaLo && r <= katakanaHi }
func isKanji(r rune) bool    { return r >= kanjiLo && r <= kanjiHi }
