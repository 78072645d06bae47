package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samples = []string{
	"",
	"a",
	"Hello World",
	"  hello   world  ",
	"tab\tand\nnewline\r\nend",
	"héllo wörld",
	"日本語のテキスト",
	"emoji 🙂 mix",
	"punctuation!?,.;:",
	"MiXeD 123 CaSe",
}

func TestGreeting(t *testing.T) {
	s := &Greeting{}
	assert.Equal(t, "Hello, World! Welcome to our service!", s.Execute("World"))
	assert.Equal(t, "Hello, ! Welcome to our service!", s.Execute(""))
	assert.Equal(t, "Greeting Service", s.Name())
}

func TestReverse(t *testing.T) {
	s := &Reverse{}
	assert.Equal(t, "", s.Execute(""))
	assert.Equal(t, "dlroW olleH", s.Execute("Hello World"))
	assert.Equal(t, "トスキテの語本日", s.Execute("日本語のテキスト"))
	assert.Equal(t, "xim 🙂 ijome", s.Execute("emoji 🙂 mix"))
	for _, in := range samples {
		assert.Equal(t, in, s.Execute(s.Execute(in)), "involution for %q", in)
	}
	assert.Equal(t, "b\uFFFDa", s.Execute("a\xffb"), "invalid bytes become U+FFFD")
	assert.NotEqual(t, "a\xffb", s.Execute(s.Execute("a\xffb")))
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, "Java Java Java", NewRepeat(3).Execute("Java"))
	assert.Equal(t, "x", NewRepeat(1).Execute("x"))
	assert.Equal(t, "", NewRepeat(0).Execute("x"))
	assert.Equal(t, "", NewRepeat(-4).Execute("x"))
	assert.Equal(t, " ", NewRepeat(2).Execute(""))
	assert.Equal(t, "Repeat Service (5 times)", NewRepeat(5).Name())

	for _, in := range []string{"go", "a b", "日本"} {
		for n := 1; n <= 6; n++ {
			out := NewRepeat(n).Execute(in)
			want := make([]string, n)
			for i := range want {
				want[i] = in
			}
			assert.Equal(t, strings.Join(want, " "), out)
		}
	}
}

func TestRepeatLimit(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "", NewRepeat(math.MaxInt).Execute("ab"))
	})
	assert.NotPanics(t, func() {
		assert.Equal(t, "", NewRepeat(MaxRepeatBytes+1).Execute(""))
	})
	assert.Len(t, NewRepeat(1000).Execute("ab"), 2999)
	assert.Equal(t, "", NewRepeat(MaxRepeatBytes/2+1).Execute("a"), "one byte over the cap")
}

func TestCaseServices(t *testing.T) {
	up, low := &Uppercase{}, &Lowercase{}
	assert.Equal(t, "HELLO, WORLD! 42", up.Execute("Hello, World! 42"))
	assert.Equal(t, "hello, world! 42", low.Execute("Hello, World! 42"))

	in := "The quick brown fox, 123 jumps! _over_ [the] lazy dog?"
	out := up.Execute(low.Execute(in))
	require.Len(t, out, len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		if c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		assert.Equal(t, c, out[i], "byte %d", i)
	}
}

func TestCount(t *testing.T) {
	s := &Count{}
	cases := []struct {
		in    string
		chars int
		words int
		lines int
	}{
		{"", 0, 0, 1},
		{"   ", 3, 0, 1},
		{"hello", 5, 1, 1},
		{"  hello   world  ", 17, 2, 1},
		{"one\ntwo\nthree", 13, 3, 3},
		{"one\r\ntwo", 8, 2, 2},
		{"trailing\n", 9, 1, 1},
		{"a\n\nb", 4, 2, 3},
		{"\n", 1, 0, 1},
		{"日本語 テキスト", 8, 2, 1},
	}
	for _, tc := range cases {
		want := fmt.Sprintf("Characters: %d\nWords: %d\nLines: %d", tc.chars, tc.words, tc.lines)
		assert.Equal(t, want, s.Execute(tc.in), "input %q", tc.in)
	}
}

func TestRemoveSpaces(t *testing.T) {
	s := &RemoveSpaces{}
	assert.Equal(t, "HelloWorld", s.Execute("  Hello \t World \n"))
	assert.Equal(t, "", s.Execute(" \t\r\n\v\f  "))
	for _, in := range samples {
		out := s.Execute(in)
		assert.False(t, strings.ContainsFunc(out, unicode.IsSpace), "whitespace left in %q", out)
		assert.Equal(t, strings.Join(strings.Fields(in), ""), out, "order preserved for %q", in)
	}
}

func TestCapitalize(t *testing.T) {
	s := &Capitalize{}
	assert.Equal(t, "Hello World", s.Execute("  hello   world  "))
	assert.Equal(t, "Hello World", s.Execute("hELLO wORLD"))
	assert.Equal(t, "", s.Execute(""))
	assert.Equal(t, "", s.Execute("   "))
	assert.Equal(t, "Élan Vital", s.Execute("élan VITAL"))
	assert.Equal(t, "123abc X", s.Execute("123ABC x"))
}

func TestCipher(t *testing.T) {
	enc := NewCipher(DefaultShift)
	assert.Equal(t, "Khoor, Zruog! 123", enc.Execute("Hello, World! 123"))
	assert.Equal(t, "abc", enc.Execute("xyz"))
	assert.Equal(t, "ABC", enc.Execute("XYZ"))
	assert.Equal(t, "kéo", enc.Execute("hél"))
	assert.Equal(t, "ü日本", enc.Execute("ü日本"))
	assert.Equal(t, "Cipher Service (shift +3)", enc.Name())

	dec := NewCipher(-DefaultShift)
	for _, in := range []string{"", "abcxyz", "ABCXYZ", "TheQuickBrownFoxJumpsOverTheLazyDog"} {
		assert.Equal(t, in, dec.Execute(enc.Execute(in)))
	}
	assert.Equal(t, enc.Execute("wrap"), NewCipher(29).Execute("wrap"))
}

func TestShufflePermutation(t *testing.T) {
	s := NewShuffle(EntropySource())
	for _, in := range samples {
		for i := 0; i < 20; i++ {
			out := s.Execute(in)
			assert.Equal(t, sortedRunes(in), sortedRunes(out), "permutation of %q", in)
		}
	}
}

func TestShuffleSeededIsReproducible(t *testing.T) {
	a := NewShuffle(SeededSource(42))
	b := NewShuffle(SeededSource(42))
	in := "abcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, a.Execute(in), b.Execute(in))
	assert.Equal(t, a.Execute(in), a.Execute(in))
}

func TestShuffleUniformity(t *testing.T) {
	s := NewShuffle(EntropySource())
	const trials = 6000
	in := "abcd"
	counts := map[rune][]int{}
	for _, r := range in {
		counts[r] = make([]int, len(in))
	}
	for i := 0; i < trials; i++ {
		for pos, r := range []rune(s.Execute(in)) {
			counts[r][pos]++
		}
	}
	expected := trials / len(in)
	for r, positions := range counts {
		for pos, n := range positions {
			assert.InDelta(t, expected, n, float64(expected)*0.15, "rune %q at %d", r, pos)
		}
	}
}

func sortedRunes(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}

func TestServicesAreTotal(t *testing.T) {
	r := NewDefault(SeededSource(1))
	inputs := append([]string{"\xff\xfe broken utf8"}, samples...)
	for _, key := range r.Names() {
		svc, err := r.Resolve(key)
		require.NoError(t, err)
		for _, in := range inputs {
			assert.NotPanics(t, func() { svc.Execute(in) }, "%s on %q", key, in)
		}
	}
}
