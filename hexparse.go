// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"encoding/hex"
	"strings"
)

// ParseHex decodes text as whitespace- and `#`-comment-tolerant hexadecimal
// CBOR, then parses the resulting bytes with ParseBytes. Whitespace between
// hex digits and `#`-to-end-of-line comments are stripped before decoding;
// an odd number of remaining hex digits is a syntax error.
func ParseHex(text string) (DataItem, error) {
	raw, err := stripHex(text)
	if err != nil {
		return nil, err
	}
	item, err := ParseBytes(raw)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// stripHex removes ASCII whitespace and `#`-to-end-of-line comments from
// text and decodes what remains as hex. Grounded on the cbor-diag-rs CLI's
// `--from hex` path, which is documented (spec §4.3) to accept exactly this
// shape of input.
func stripHex(text string) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(text))

	inComment := false
	for i, r := range text {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case r == '#':
			inComment = true
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			// skip
		default:
			if !isHexDigit(r) {
				return nil, wrapErr(ErrSyntax, i, "invalid hex digit")
			}
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits)%2 != 0 {
		return nil, wrapErr(ErrSyntax, len(text), "odd number of hex digits")
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, wrapErr(ErrSyntax, 0, err.Error())
	}
	return raw, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
