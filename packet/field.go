package packet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// ErrValueTooLarge reports a numeric request field whose decimal
// representation does not fit its fixed wire width. The legacy terminal
// software silently dropped high-order digits here; for a payment system
// that is a correctness hazard, so the builders reject instead.
var ErrValueTooLarge = errors.New("packet: numeric value exceeds field width")

// putFixedASCII copies s into dst left-aligned, truncating if s is longer
// than dst and leaving the remainder as NUL padding.
//
// This is the fit-or-truncate contract for text fields such as the terminal
// ID: truncation is deliberate and silent, matching the terminal firmware.
func putFixedASCII(dst []byte, s string) {
	copy(dst, s)
}

// putSpacePadded copies s into dst left-aligned with trailing space padding,
// truncating if s is longer than dst.
//
// Approval numbers use this layout. The asymmetry against the zero-padded
// numeric fields is part of the wire contract.
func putSpacePadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}

// putNumeric writes v into dst as a right-aligned, zero-padded decimal ASCII
// digit string.
//
// Returns ErrValueTooLarge when the decimal representation of v does not fit,
// and rejects negative values (no sign column exists on the wire).
func putNumeric(dst []byte, v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: negative value %d", ErrValueTooLarge, v)
	}

	s := strconv.FormatInt(v, 10)
	if len(s) > len(dst) {
		return fmt.Errorf("%w: %d needs %d digits, field holds %d", ErrValueTooLarge, v, len(s), len(dst))
	}

	pad := len(dst) - len(s)
	for i := 0; i < pad; i++ {
		dst[i] = '0'
	}
	copy(dst[pad:], s)

	return nil
}

// trimASCII interprets region as ASCII text, dropping embedded NUL bytes and
// trimming surrounding whitespace.
func trimASCII(region []byte) string {
	var sb strings.Builder
	sb.Grow(len(region))

	for _, b := range region {
		if b != 0 {
			sb.WriteByte(b)
		}
	}

	return strings.TrimSpace(sb.String())
}

// trimText interprets region as EUC-KR encoded text, falling back to a plain
// ASCII interpretation when the bytes are not valid EUC-KR. It never fails;
// garbled terminal text degrades to best effort.
func trimText(region []byte) string {
	decoded, err := korean.EUCKR.NewDecoder().Bytes(region)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		// Not valid EUC-KR (the decoder either errors or substitutes
		// replacement runes, depending on the sequence).
		return trimASCII(region)
	}

	return trimASCII(decoded)
}

// field slices payload[off:off+width], clamping to the payload bounds so
// decoders stay total on short payloads.
func field(payload []byte, off, width int) []byte {
	if off >= len(payload) {
		return nil
	}

	end := off + width
	if end > len(payload) {
		end = len(payload)
	}

	return payload[off:end]
}

// numericField decodes a fixed-width decimal ASCII field, returning 0 for
// blank or non-numeric regions.
func numericField(payload []byte, off, width int) int64 {
	s := trimASCII(field(payload, off, width))
	if s == "" {
		return 0
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return v
}
