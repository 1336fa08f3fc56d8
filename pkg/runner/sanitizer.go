package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds a single question or answer, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "PARLEY_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer cleans text typed by users before it reaches the dialog or the
// Answer Service.
type Sanitizer struct {
	MaxSize int
}

// NewSanitizer returns a sanitizer whose limit honours EnvMaxInputSize.
func NewSanitizer() Sanitizer {
	return Sanitizer{MaxSize: maxInputSizeFromEnv()}
}

// SanitizeInput cleans input with NewSanitizer.
func SanitizeInput(input string) (string, error) {
	return NewSanitizer().Clean(input)
}

// Clean rejects oversized or invalid UTF-8 input and removes terminal escape
// sequences and control characters other than newline, tab and carriage
// return. Oversized input is rejected, never truncated.
func (s Sanitizer) Clean(input string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if !strings.ContainsFunc(input, unsafeRune) {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == '\x1b' {
			i += escapeLen(input[i:])
			continue
		}
		if !unsafeRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String(), nil
}

func unsafeRune(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// escapeLen returns the length of the escape sequence at the start of s.
// CSI sequences (ESC [ params final) are consumed whole; a lone ESC is one byte.
func escapeLen(s string) int {
	if len(s) < 2 || s[1] != '[' {
		return 1
	}
	for j := 2; j < len(s); j++ {
		if s[j] >= 0x40 && s[j] <= 0x7e {
			return j + 1
		}
	}
	return len(s)
}

func maxInputSizeFromEnv() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
