package service

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TextService is a named, pure transformation from one string to another.
// Execute must accept every string, including the empty one.
type TextService interface {
	Name() string
	Execute(input string) string
}

type Greeting struct{}

func (s *Greeting) Name() string { return "Greeting Service" }

func (s *Greeting) Execute(input string) string {
	return "Hello, " + input + "! Welcome to our service!"
}

// Reverse reverses by code point so multi-byte characters survive. Reversing
// twice gives back the input only when it is valid UTF-8; invalid bytes come
// out as U+FFFD.
type Reverse struct{}

func (s *Reverse) Name() string { return "Reverse Service" }

func (s *Reverse) Execute(input string) string {
	r := []rune(input)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// MaxRepeatBytes caps the size of a Repeat result.
const MaxRepeatBytes = 1 << 30

type Repeat struct {
	times int
}

func NewRepeat(times int) *Repeat {
	return &Repeat{times: times}
}

func (s *Repeat) Name() string { return fmt.Sprintf("Repeat Service (%d times)", s.times) }

func (s *Repeat) Times() int { return s.times }

// Execute joins times copies of input with a single space. A non-positive
// count yields the empty string, and so does a result that would be larger
// than MaxRepeatBytes.
func (s *Repeat) Execute(input string) string {
	if s.times <= 0 {
		return ""
	}
	per := len(input) + 1
	if s.times > (MaxRepeatBytes+1)/per {
		return ""
	}
	var b strings.Builder
	b.Grow(per*s.times - 1)
	for i := 0; i < s.times; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(input)
	}
	return b.String()
}

type Uppercase struct{}

type Lowercase struct{}

func (s *Uppercase) Name() string { return "Uppercase Service" }
func (s *Lowercase) Name() string { return "Lowercase Service" }

func (s *Uppercase) Execute(input string) string { return strings.ToUpper(input) }
func (s *Lowercase) Execute(input string) string { return strings.ToLower(input) }

// Count reports characters, words and lines on three lines.
type Count struct{}

func (s *Count) Name() string { return "Count Service" }

func (s *Count) Execute(input string) string {
	var b strings.Builder
	b.WriteString("Characters: ")
	b.WriteString(strconv.Itoa(utf8.RuneCountInString(input)))
	b.WriteString("\nWords: ")
	b.WriteString(strconv.Itoa(len(strings.Fields(input))))
	b.WriteString("\nLines: ")
	b.WriteString(strconv.Itoa(lineCount(input)))
	return b.String()
}

// lineCount splits on \n or \r\n, drops trailing empty lines and never
// reports fewer than one line.
func lineCount(input string) int {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	n := len(lines)
	for n > 0 && lines[n-1] == "" {
		n--
	}
	if n == 0 {
		return 1
	}
	return n
}

type RemoveSpaces struct{}

func (s *RemoveSpaces) Name() string { return "Remove Spaces Service" }

func (s *RemoveSpaces) Execute(input string) string {
	out, _, err := transform.String(runes.Remove(runes.In(unicode.White_Space)), input)
	if err != nil {
		return strings.Map(dropSpace, input)
	}
	return out
}

func dropSpace(r rune) rune {
	if unicode.Is(unicode.White_Space, r) {
		return -1
	}
	return r
}

type Capitalize struct{}

func (s *Capitalize) Name() string { return "Capitalize Service" }

func (s *Capitalize) Execute(input string) string {
	if input == "" {
		return input
	}
	words := strings.Fields(input)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// DefaultShift is the cipher offset used by the stock catalogue.
const DefaultShift = 3

// Cipher is a Caesar shift over ASCII letters. Every other rune passes
// through unchanged. A negative shift undoes a positive one.
type Cipher struct {
	shift int
}

func NewCipher(shift int) *Cipher {
	return &Cipher{shift: shift}
}

func (s *Cipher) Name() string { return fmt.Sprintf("Cipher Service (shift %+d)", s.shift) }

func (s *Cipher) Shift() int { return s.shift }

func (s *Cipher) Execute(input string) string {
	k := rune(((s.shift % 26) + 26) % 26)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+k)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+k)%26
		default:
			return r
		}
	}, input)
}

// RandSource hands out a generator for a single Execute call. Generators are
// never shared between calls.
type RandSource func() *rand.Rand

// EntropySource seeds every generator from the runtime's concurrency-safe
// top-level source.
func EntropySource() RandSource {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// SeededSource returns the same sequence on every call.
func SeededSource(seed uint64) RandSource {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// Shuffle permutes the runes of its input with Fisher-Yates.
type Shuffle struct {
	src RandSource
}

func NewShuffle(src RandSource) *Shuffle {
	if src == nil {
		src = EntropySource()
	}
	return &Shuffle{src: src}
}

func (s *Shuffle) Name() string { return "Shuffle Service" }

func (s *Shuffle) Execute(input string) string {
	r := []rune(input)
	if len(r) < 2 {
		return input
	}
	rng := s.src()
	for i := len(r) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
