// Package keyword implements tokenization and canonicalization of free-text
// keyword tags. Splitting and normalization are separate passes: dedup during
// the split happens on raw substrings, before any normalization.
package keyword

import (
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a raw keyword: lowercase, trim surrounding
// whitespace, NFD-decompose so accented characters split into base letter plus
// combining marks, then drop every non-ASCII code point. Dropping the marks
// leaves the base letter, so "Café" becomes "cafe". The result is empty when
// the input has no ASCII-representable characters.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// Split scans a raw string of keywords separated by spaces and/or commas and
// yields each distinct raw substring in first-occurrence order, in one forward
// pass. A candidate token between two separators is yielded only if it is
// wider than one character, so single characters produced by adjacent
// separators are dropped. Width is measured in runes, so a lone multibyte
// character such as "é" is dropped exactly like "a". The trailing substring
// after the last separator is yielded regardless of its width, subject to the
// same dedup.
//
// The returned sequence is lazy and meant to be drained once.
func Split(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		last := 0
		for i := 0; i < len(s); i++ {
			if s[i] != ' ' && s[i] != ',' {
				continue
			}
			if utf8.RuneCountInString(s[last:i]) > 1 {
				word := s[last:i]
				if _, dup := seen[word]; !dup {
					seen[word] = struct{}{}
					if !yield(word) {
						return
					}
				}
			}
			last = i + 1
		}
		if last != len(s) {
			word := s[last:]
			if _, dup := seen[word]; !dup {
				yield(word)
			}
		}
	}
}

// NormalizeAll normalizes every token in the sequence, dropping tokens that
// normalize to the empty string and duplicates introduced by normalization
// (two raw spellings of the same canonical keyword). Order of first
// appearance is preserved.
func NormalizeAll(tokens iter.Seq[string]) []string {
	var out []string
	seen := make(map[string]struct{})
	for t := range tokens {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
