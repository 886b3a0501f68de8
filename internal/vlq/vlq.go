// Package vlq implements the base64 variable-length quantity encoding used by
// source maps.
//
// Each integer is zig-zag sign encoded and written in 5-bit groups, least
// significant group first. Bit 5 of every base64 digit is set when another
// group follows.
package vlq

import (
	"fmt"
	"math"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	baseShift       = 5
	baseMask        = 1<<baseShift - 1 // 31
	continuationBit = 1 << baseShift   // 32
	maxShift        = 60
)

// digits maps a byte to its base64 value, -1 for bytes outside the alphabet.
var digits [256]int8

func init() {
	for i := range digits {
		digits[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digits[alphabet[i]] = int8(i)
	}
}

// DecodeError reports a byte that cannot be part of a VLQ sequence.
type DecodeError struct {
	// Offset is the byte offset in the decoded text.
	Offset int
	// Char is the offending byte, 0 when the input ended mid-value.
	Char   byte
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("vlq: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("vlq: %s %q at offset %d", e.Reason, e.Char, e.Offset)
}

// Encode encodes values as one VLQ string. It panics on math.MinInt64, whose
// magnitude does not fit the 64-bit sign encoding.
func Encode(values []int) string {
	var buf strings.Builder
	for _, v := range values {
		appendValue(&buf, v)
	}
	return buf.String()
}

func appendValue(buf *strings.Builder, value int) {
	var unsigned uint64
	if value == math.MinInt64 {
		panic("vlq: cannot encode math.MinInt64")
	}
	if value < 0 {
		unsigned = uint64(-value)<<1 | 1
	} else {
		unsigned = uint64(value) << 1
	}

	for {
		digit := unsigned & baseMask
		unsigned >>= baseShift
		if unsigned > 0 {
			digit |= continuationBit
		}
		buf.WriteByte(alphabet[digit])
		if unsigned == 0 {
			return
		}
	}
}

// Decode decodes every value in text.
func Decode(text string) ([]int, error) {
	return AppendRange(nil, text, 0, len(text))
}

// DecodeRange decodes the values in text[start:end]. The window is clamped to
// the bounds of text.
func DecodeRange(text string, start, end int) ([]int, error) {
	return AppendRange(nil, text, start, end)
}

// AppendRange decodes the values in text[start:end] and appends them to dst.
// Offsets in a returned *DecodeError are relative to text, not to start.
func AppendRange(dst []int, text string, start, end int) ([]int, error) {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}

	var value uint64
	var shift uint
	for i := start; i < end; i++ {
		c := text[i]
		digit := digits[c]
		if digit < 0 {
			return dst, &DecodeError{Offset: i, Char: c, Reason: "invalid character"}
		}
		if shift > maxShift {
			return dst, &DecodeError{Offset: i, Char: c, Reason: "value overflows"}
		}

		value |= uint64(digit&baseMask) << shift
		shift += baseShift
		if digit&continuationBit != 0 {
			continue
		}

		if value&1 != 0 {
			dst = append(dst, -int(value>>1))
		} else {
			dst = append(dst, int(value>>1))
		}
		value, shift = 0, 0
	}

	if shift != 0 {
		return dst, &DecodeError{Offset: end, Reason: "unterminated value"}
	}
	return dst, nil
}
