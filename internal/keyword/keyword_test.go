package keyword

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already canonical", input: "cat", want: "cat"},
		{name: "uppercase and trailing space", input: "Café ", want: "cafe"},
		{name: "accents only plus spaces", input: "  ÀÉ ", want: "ae"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "no ascii representation", input: "日本語", want: ""},
		{name: "mixed scripts", input: "naïve猫", want: "naive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single token", input: "cat", want: []string{"cat"}},
		{name: "comma space separated with duplicate", input: "cat, dog, cat", want: []string{"cat", "dog"}},
		{name: "space separated", input: "cat dog bird", want: []string{"cat", "dog", "bird"}},
		{name: "adjacent separators collapse", input: "cat,,dog", want: []string{"cat", "dog"}},
		{name: "separators only", input: ", ,", want: nil},
		{name: "trailing separator", input: "cat,", want: []string{"cat"}},
		{name: "duplicate raw substrings", input: "dog dog dog", want: []string{"dog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(Split(tt.input)))
		})
	}
}

// Mid-string tokens one character wide are dropped, but a trailing
// one-character token is still emitted. The asymmetry is deliberate and load
// bearing for compatibility; this test locks it in.
func TestSplitShortTokenAsymmetry(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "mid-string single char dropped", input: "a, b", want: []string{"b"}},
		{name: "mid-string single multibyte char dropped", input: "é dog", want: []string{"dog"}},
		{name: "two-rune multibyte token kept", input: "éé dog", want: []string{"éé", "dog"}},
		{name: "trailing single multibyte char kept", input: "dog é", want: []string{"dog", "é"}},
		{name: "trailing single char kept", input: "cat, x", want: []string{"cat", "x"}},
		{name: "lone single char kept", input: "a", want: []string{"a"}},
		{name: "single char then separator dropped", input: "a ", want: nil},
		{name: "trailing duplicate suppressed", input: "ab cd ab", want: []string{"ab", "cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slices.Collect(Split(tt.input)))
		})
	}
}

func TestSplitIsLazy(t *testing.T) {
	var got []string
	for w := range Split("cat dog bird") {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"cat", "dog"}, got)
}

func TestNormalizeAll(t *testing.T) {
	t.Run("split then normalize", func(t *testing.T) {
		got := NormalizeAll(Split("Cat, dog, CAT"))
		assert.Equal(t, []string{"cat", "dog"}, got)
	})

	t.Run("raw-distinct spellings collapse after normalization", func(t *testing.T) {
		got := NormalizeAll(Split("Café cafe"))
		assert.Equal(t, []string{"cafe"}, got)
	})

	t.Run("dropped single-rune token never reaches normalization", func(t *testing.T) {
		got := NormalizeAll(Split("é dog"))
		assert.Equal(t, []string{"dog"}, got)
	})

	t.Run("tokens with no ascii form are dropped", func(t *testing.T) {
		got := NormalizeAll(Split("猫猫 dog"))
		assert.Equal(t, []string{"dog"}, got)
	})

	t.Run("all tokens degenerate", func(t *testing.T) {
		assert.Empty(t, NormalizeAll(Split("猫猫 犬犬")))
	})

	t.Run("plain list input", func(t *testing.T) {
		got := NormalizeAll(slices.Values([]string{" Dog ", "CAT"}))
		assert.Equal(t, []string{"dog", "cat"}, got)
	})
}
