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

// DefaultMaxInputSize bounds one submitted line, in bytes.
// The longest valid command is a few dozen bytes; the slack covers file names typed by mistake.
const DefaultMaxInputSize = 1024

// EnvMaxInputSize overrides DefaultMaxInputSize.
const EnvMaxInputSize = "TURTLE_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput prepares one raw line for the interpreter.
//
// Lines over the size limit and invalid UTF-8 are rejected, never truncated.
// Terminal escape sequences (ESC [ ... final byte) are dropped whole, tabs and
// stray line breaks become spaces, and any other control character is removed.
func SanitizeInput(input string) (string, error) {
	if limit := maxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if !needsCleaning(input) {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case r == '\x1b':
			i += escapeLen(input[i:])
			continue
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String(), nil
}

func needsCleaning(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// escapeLen returns how many bytes of s (which starts with ESC) form one escape sequence.
// CSI sequences run to their final byte in 0x40-0x7E; any other ESC covers itself and the next byte.
func escapeLen(s string) int {
	if len(s) < 2 {
		return len(s)
	}
	if s[1] != '[' {
		return 2
	}
	for j := 2; j < len(s); j++ {
		if s[j] >= 0x40 && s[j] <= 0x7e {
			return j + 1
		}
	}
	return len(s)
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
