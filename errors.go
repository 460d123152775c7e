// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for these across the wrapped,
// offset-carrying errors that decode.go, hexparse.go and diag_parse.go
// actually return.
var (
	// ErrTruncated means the input ends before a complete data item could be
	// read. ParseBytes treats this as fatal; ParseBytesPartial treats it as
	// "not enough data yet" and returns ok=false instead of an error.
	ErrTruncated = errors.New("cbordiag: unexpected end of input")

	// ErrMalformed means the input contains a byte sequence that can never
	// be a valid CBOR data item (bad additional-info value, stray break).
	ErrMalformed = errors.New("cbordiag: malformed CBOR")

	// ErrInvalidUTF8 means a major-type-3 (text string) payload is not
	// valid UTF-8.
	ErrInvalidUTF8 = errors.New("cbordiag: invalid UTF-8 in text string")

	// ErrTrailingInput means ParseBytes, ParseHex or ParseDiag parsed one
	// complete item but input remained afterward.
	ErrTrailingInput = errors.New("cbordiag: trailing input after first item")

	// ErrSyntax means the hex or diagnostic text did not parse.
	ErrSyntax = errors.New("cbordiag: syntax error")

	// ErrWidthOverflow means an explicit `_N` width suffix in diagnostic
	// notation is too narrow to hold the value it annotates.
	ErrWidthOverflow = errors.New("cbordiag: value does not fit in requested width")

	// ErrNestingTooDeep means structural nesting (array/map/tag) exceeded
	// MaxNestingDepth. Recursion depth is bounded to protect the caller's
	// stack against adversarial input; see spec §5.
	ErrNestingTooDeep = errors.New("cbordiag: nesting too deep")
)

// MaxNestingDepth bounds the recursion depth of the binary decoder and the
// diagnostic parser. The annotated-hex and diagnostic encoders do not check
// it; they recurse as deep as the tree they are given. The spec
// recommends 128 as a sensible default; callers embedding cbordiag in a
// service that accepts untrusted input should not raise this without also
// bounding input size.
var MaxNestingDepth = 128

// offsetError wraps a sentinel error with the byte or rune offset at which
// it was detected, matching the teacher's pattern of typed errors that
// still satisfy errors.Is against package-level sentinels.
type offsetError struct {
	sentinel error
	offset   int
	detail   string
}

func (e *offsetError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("%s (at offset %d)", e.sentinel.Error(), e.offset)
	}
	return fmt.Sprintf("%s (at offset %d): %s", e.sentinel.Error(), e.offset, e.detail)
}

func (e *offsetError) Unwrap() error { return e.sentinel }

func wrapErr(sentinel error, offset int, detail string) error {
	return &offsetError{sentinel: sentinel, offset: offset, detail: detail}
}
