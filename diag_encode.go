// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"bytes"
	"encoding/base64"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Layout selects between the diagnostic encoder's two output shapes.
type Layout uint8

const (
	// Compact renders the entire item on one line.
	Compact Layout = iota
	// Pretty indents nontrivial containers across multiple lines.
	Pretty
)

// ByteEncoding is the base encoding the diagnostic encoder notates byte
// strings in. It starts at Base16 and is switched while descending into a
// Tag 21/22/23 subtree (spec §4.5's "base-encoding switch").
type ByteEncoding uint8

const (
	Base16 ByteEncoding = iota
	Base64
	Base64Url
)

// trivialBudget is the threshold (spec §4.5, §8 invariant 4) under which a
// container renders inline instead of across multiple indented lines.
const trivialBudget = 60

// CompactDiag renders item as single-line diagnostic notation.
func CompactDiag(item DataItem) string {
	var buf bytes.Buffer
	sink := NewPlainSink(&buf)
	_ = renderDiag(sink, item, diagCtx{layout: Compact, encoding: Base16})
	return buf.String()
}

// PrettyDiag renders item as indented, ANSI-styled diagnostic notation.
func PrettyDiag(item DataItem) string {
	var buf bytes.Buffer
	sink := NewAnsiSink(&buf)
	_ = renderDiag(sink, item, diagCtx{layout: Pretty, encoding: Base16})
	return buf.String()
}

// WriteCompactDiag and WriteDiag let callers supply their own Sink (e.g. a
// PlainSink when color is disabled), matching the cmd/cbordiag CLI's need
// to gate styling on a --color flag rather than always emitting ANSI.
func WriteCompactDiag(s Sink, item DataItem) error {
	return renderDiag(s, item, diagCtx{layout: Compact, encoding: Base16})
}

func WriteDiag(s Sink, item DataItem, layout Layout) error {
	return renderDiag(s, item, diagCtx{layout: layout, encoding: Base16})
}

type diagCtx struct {
	layout   Layout
	indent   int
	encoding ByteEncoding
}

func (c diagCtx) child() diagCtx {
	c.indent += 4
	return c
}

func (c diagCtx) withEncoding(e ByteEncoding) diagCtx {
	c.encoding = e
	return c
}

func renderDiag(s Sink, item DataItem, ctx diagCtx) error {
	switch v := item.(type) {
	case Integer:
		return renderInteger(s, v)
	case Negative:
		return renderNegative(s, v)
	case Float:
		return renderFloat(s, v)
	case ByteString:
		return renderByteString(s, v, ctx.encoding)
	case IndefiniteByteString:
		return renderIndefiniteByteString(s, v, ctx)
	case TextString:
		return renderTextString(s, v.Data)
	case IndefiniteTextString:
		return renderIndefiniteTextString(s, v, ctx)
	case Array:
		return renderArray(s, v, ctx)
	case Map:
		return renderMap(s, v, ctx)
	case Tag:
		return renderTag(s, v, ctx)
	case Simple:
		return renderSimple(s, v)
	default:
		return wrapErr(ErrMalformed, 0, "unknown DataItem implementation")
	}
}

func renderInteger(s Sink, v Integer) error {
	if err := writeString(s, strconv.FormatUint(v.Value, 10)); err != nil {
		return err
	}
	return writeWidthSuffix(s, v.Width)
}

// negativeDecimal computes -1-value as a signed value wide enough to
// represent -2^64 (one more negative value than int64 holds), exactly as
// original_source/src/encode/diag.rs does via i128.
func negativeDecimal(value uint64) string {
	bi := new(big.Int).SetUint64(value)
	bi.Add(bi, big.NewInt(1))
	bi.Neg(bi)
	return bi.String()
}

func renderNegative(s Sink, v Negative) error {
	if err := writeString(s, negativeDecimal(v.Value)); err != nil {
		return err
	}
	return writeWidthSuffix(s, v.Width)
}

func writeWidthSuffix(s Sink, w Width) error {
	digit, ok := w.suffix()
	if !ok {
		return nil
	}
	return s.Style(ColorNone, IntensityFaint, func() error {
		return writeString(s, "_"+digit)
	})
}

func writeFloatWidthSuffix(s Sink, w FloatWidth) error {
	digit, ok := w.suffix()
	if !ok {
		return nil
	}
	return s.Style(ColorNone, IntensityFaint, func() error {
		return writeString(s, "_"+digit)
	})
}

// formatFloat64 mirrors the teacher's diagnose.go encodeFloat digit
// formatting: shortest round-tripping decimal, switching to 'e' notation
// outside [1e-6, 1e21), cleaning up "e-09" to "e-9", and appending ".0"
// when the result has neither '.' nor 'e'.
func formatFloat64(f float64) string {
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	if bytes.IndexByte(b, '.') < 0 {
		if i := bytes.IndexByte(b, 'e'); i < 0 {
			b = append(b, '.', '0')
		} else {
			b = append(b[:i+2], b[i:]...)
			b[i] = '.'
			b[i+1] = '0'
		}
	}
	return string(b)
}

func renderFloat(s Sink, v Float) error {
	switch {
	case math.IsNaN(v.Value):
		return writeString(s, "NaN")
	case math.IsInf(v.Value, 1):
		return writeString(s, "Infinity")
	case math.IsInf(v.Value, -1):
		return writeString(s, "-Infinity")
	}
	if err := writeString(s, formatFloat64(v.Value)); err != nil {
		return err
	}
	return writeFloatWidthSuffix(s, v.Width)
}

func renderSimple(s Sink, v Simple) error {
	switch v {
	case SimpleFalse:
		return s.Style(ColorGreen, IntensityNormal, func() error { return writeString(s, "false") })
	case SimpleTrue:
		return s.Style(ColorGreen, IntensityNormal, func() error { return writeString(s, "true") })
	case SimpleNull:
		return s.Style(ColorRed, IntensityNormal, func() error { return writeString(s, "null") })
	case SimpleUndefined:
		return s.Style(ColorRed, IntensityNormal, func() error { return writeString(s, "undefined") })
	default:
		return s.Style(ColorMagenta, IntensityNormal, func() error {
			return writeString(s, "simple("+strconv.Itoa(int(v))+")")
		})
	}
}

func renderTextString(s Sink, data string) error {
	return s.Style(ColorBlue, IntensityNormal, func() error {
		return writeQuotedString(s, data, '"')
	})
}

// writeQuotedString renders data with JSON-style quoting, backslash-
// escaping only the quote character and backslash itself — the exact
// "default escape routine" spec §9 calls out as the scope of escaping the
// source implements (see original_source/src/encode/diag.rs's
// textstring_to_diag, which escapes via Rust's escape_default on '"' and
// '\\' only).
func writeQuotedString(s Sink, data string, quote byte) error {
	if err := s.WriteByte(quote); err != nil {
		return err
	}
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == quote || c == '\\' {
			if err := s.WriteByte('\\'); err != nil {
				return err
			}
		}
		if err := s.WriteByte(c); err != nil {
			return err
		}
	}
	return s.WriteByte(quote)
}

func renderByteString(s Sink, v ByteString, encoding ByteEncoding) error {
	prefix, suffix := byteStringDelimiters(encoding)
	if err := s.Style(ColorNone, IntensityFaint, func() error { return writeString(s, prefix) }); err != nil {
		return err
	}
	if err := s.Style(ColorYellow, IntensityNormal, func() error {
		return writeString(s, encodeByteStringBody(v.Data, encoding))
	}); err != nil {
		return err
	}
	return s.Style(ColorNone, IntensityFaint, func() error { return writeString(s, suffix) })
}

func byteStringDelimiters(encoding ByteEncoding) (prefix, suffix string) {
	switch encoding {
	case Base64, Base64Url:
		return "b64'", "'"
	default:
		return "h'", "'"
	}
}

func encodeByteStringBody(data []byte, encoding ByteEncoding) string {
	switch encoding {
	case Base64:
		return base64.RawStdEncoding.EncodeToString(data)
	case Base64Url:
		return base64.RawURLEncoding.EncodeToString(data)
	default:
		return hexEncodeLower(data)
	}
}

func hexEncodeLower(data []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[i*2] = digits[b>>4]
		out[i*2+1] = digits[b&0xf]
	}
	return string(out)
}

func renderIndefiniteByteString(s Sink, v IndefiniteByteString, ctx diagCtx) error {
	if err := writeString(s, "(_"); err != nil {
		return err
	}
	if len(v.Chunks) == 0 {
		return writeString(s, " )")
	}
	for _, chunk := range v.Chunks {
		if err := writeString(s, " "); err != nil {
			return err
		}
		if err := renderByteString(s, chunk, ctx.encoding); err != nil {
			return err
		}
	}
	return writeString(s, ")")
}

func renderIndefiniteTextString(s Sink, v IndefiniteTextString, _ diagCtx) error {
	if err := writeString(s, "(_"); err != nil {
		return err
	}
	if len(v.Chunks) == 0 {
		return writeString(s, " )")
	}
	for _, chunk := range v.Chunks {
		if err := writeString(s, " "); err != nil {
			return err
		}
		if err := renderTextString(s, chunk.Data); err != nil {
			return err
		}
	}
	return writeString(s, ")")
}

func renderArray(s Sink, v Array, ctx diagCtx) error {
	open, closeStr := "[", "]"
	if v.Width == nil {
		open = "[_"
	}
	return renderContainer(s, ctx, DataItem(v), open, closeStr, len(v.Items), func(i int) (func() error, error) {
		return func() error { return renderDiag(s, v.Items[i], ctx.child()) }, nil
	})
}

func renderMap(s Sink, v Map, ctx diagCtx) error {
	open, closeStr := "{", "}"
	if v.Width == nil {
		open = "{_"
	}
	return renderContainer(s, ctx, DataItem(v), open, closeStr, len(v.Pairs), func(i int) (func() error, error) {
		pair := v.Pairs[i]
		return func() error {
			child := ctx.child()
			if err := renderDiag(s, pair.Key, child); err != nil {
				return err
			}
			sep := ":"
			if ctx.layout == Pretty {
				sep = ": "
			}
			if err := writeString(s, sep); err != nil {
				return err
			}
			return renderDiag(s, pair.Value, child)
		}, nil
	})
}

// renderContainer implements the shared inline-vs-multiline rendering rule
// (spec §4.5): pretty+nontrivial puts one element per line with a trailing
// comma, everything else separates elements with ", ".
func renderContainer(s Sink, ctx diagCtx, item DataItem, open, closeStr string, n int, elem func(i int) (func() error, error)) error {
	if err := writeString(s, open); err != nil {
		return err
	}
	if n == 0 {
		return writeString(s, closeStr)
	}

	multiline := ctx.layout == Pretty && !isTrivial(item, ctx.encoding)
	if multiline {
		childIndent := ctx.indent + 4
		for i := 0; i < n; i++ {
			if err := writeString(s, "\n"+spaces(childIndent)); err != nil {
				return err
			}
			fn, err := elem(i)
			if err != nil {
				return err
			}
			if err := fn(); err != nil {
				return err
			}
			if err := writeString(s, ","); err != nil {
				return err
			}
		}
		if err := writeString(s, "\n"+spaces(ctx.indent)); err != nil {
			return err
		}
		return writeString(s, closeStr)
	}

	if strings.HasSuffix(open, "_") {
		if err := writeString(s, " "); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := writeString(s, ", "); err != nil {
				return err
			}
		}
		fn, err := elem(i)
		if err != nil {
			return err
		}
		if err := fn(); err != nil {
			return err
		}
	}
	return writeString(s, closeStr)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func renderTag(s Sink, v Tag, ctx diagCtx) error {
	if err := s.Style(ColorCyan, IntensityNormal, func() error {
		return writeString(s, strconv.FormatUint(v.Number, 10))
	}); err != nil {
		return err
	}
	if err := writeWidthSuffix(s, v.Width); err != nil {
		return err
	}
	if err := s.Style(ColorCyan, IntensityNormal, func() error { return s.WriteByte('(') }); err != nil {
		return err
	}
	childCtx := ctx.child()
	if enc, ok := switchedEncoding(v.Number); ok {
		childCtx = childCtx.withEncoding(enc)
	}
	if err := renderDiag(s, v.Value, childCtx); err != nil {
		return err
	}
	return s.Style(ColorCyan, IntensityNormal, func() error { return s.WriteByte(')') })
}

// switchedEncoding implements the tag 21/22/23 byte-string display-encoding
// switch (spec §4.5): it only applies inside the tagged value's subtree, so
// it is threaded through diagCtx rather than held as mutable state.
func switchedEncoding(tagNumber uint64) (ByteEncoding, bool) {
	switch tagNumber {
	case 21:
		return Base64Url, true
	case 22:
		return Base64, true
	case 23:
		return Base16, true
	default:
		return 0, false
	}
}

// isTrivial reports whether item fits under trivialBudget characters when
// rendered inline. The estimator is conservative (never underestimates)
// and short-circuits as soon as the running total would exceed the budget,
// so it stays cheap even for huge containers — it never has to look past
// the point where triviality is already decided.
func isTrivial(item DataItem, encoding ByteEncoding) bool {
	return estimateLen(item, encoding, trivialBudget) < trivialBudget
}

// estimateLen returns an upper bound on item's rendered length. Containers
// and indefinite strings stop summing and return budget+1 once the bound is
// known to exceed budget (the caller only cares whether the result is
// < budget, not the exact value beyond that point); other items return
// their full estimate.
func estimateLen(item DataItem, encoding ByteEncoding, budget int) int {
	switch v := item.(type) {
	case Integer:
		n := len(strconv.FormatUint(v.Value, 10))
		if _, ok := v.Width.suffix(); ok {
			n += 2
		}
		return n
	case Negative:
		n := len(negativeDecimal(v.Value))
		if _, ok := v.Width.suffix(); ok {
			n += 2
		}
		return n
	case Float:
		// Worst case full float64 precision plus sign, leading zeros or
		// exponent, and suffix.
		return 25 + 2
	case Simple:
		switch v {
		case SimpleFalse, SimpleTrue:
			return 5
		case SimpleNull:
			return 4
		case SimpleUndefined:
			return 9
		default:
			return 9 + len(strconv.Itoa(int(v)))
		}
	case ByteString:
		prefix, suffix := byteStringDelimiters(encoding)
		bodyLen := len(encodeByteStringBody(v.Data, encoding))
		return len(prefix) + bodyLen + len(suffix)
	case IndefiniteByteString:
		total := 3 // "(_ "
		for i, c := range v.Chunks {
			if i > 0 {
				total += 2
			}
			total += estimateLen(c, encoding, budget)
			if total > budget {
				return budget + 1
			}
		}
		return total + 1
	case TextString:
		return 2 + estimateQuotedLen(v.Data)
	case IndefiniteTextString:
		total := 3
		for i, c := range v.Chunks {
			if i > 0 {
				total += 2
			}
			total += estimateLen(c, encoding, budget)
			if total > budget {
				return budget + 1
			}
		}
		return total + 1
	case Array:
		return estimateContainer(len(v.Items), v.Width == nil, func(i int) int {
			return estimateLen(v.Items[i], encoding, budget)
		}, budget)
	case Map:
		return estimateContainer(len(v.Pairs), v.Width == nil, func(i int) int {
			p := v.Pairs[i]
			return estimateLen(p.Key, encoding, budget) + 2 + estimateLen(p.Value, encoding, budget)
		}, budget)
	case Tag:
		enc := encoding
		if e, ok := switchedEncoding(v.Number); ok {
			enc = e
		}
		n := len(strconv.FormatUint(v.Number, 10)) + 2
		if _, ok := v.Width.suffix(); ok {
			n += 2
		}
		return n + estimateLen(v.Value, enc, budget)
	default:
		return budget + 1
	}
}

func estimateQuotedLen(s string) int {
	n := 2
	for i := 0; i < len(s); i++ {
		n++
		if s[i] == '"' || s[i] == '\\' {
			n++
		}
	}
	return n
}

func estimateContainer(n int, indefinite bool, elem func(i int) int, budget int) int {
	total := 2
	if indefinite {
		total++
	}
	if n == 0 {
		return total
	}
	total++ // leading space
	for i := 0; i < n; i++ {
		if i > 0 {
			total += 2
		}
		total += elem(i)
		if total > budget {
			return budget + 1
		}
	}
	return total
}
