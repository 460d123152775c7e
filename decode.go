// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/x448/float16"
)

// decoder walks a byte slice with a cursor, the way the teacher's
// decode.go/valid.go pair does, but builds a DataItem tree instead of
// reflecting into arbitrary Go values.
type decoder struct {
	data  []byte
	off   int
	depth int
}

// ParseBytes decodes exactly one CBOR data item from data. The entire slice
// must be consumed; any trailing bytes are reported as ErrTrailingInput.
// Truncated input is reported as ErrMalformed (only ParseBytesPartial
// treats truncation as recoverable).
func ParseBytes(data []byte) (DataItem, error) {
	d := &decoder{data: data}
	item, err := d.parseItem()
	if err != nil {
		if err == ErrTruncated {
			return nil, wrapErr(ErrMalformed, d.off, "truncated input")
		}
		return nil, err
	}
	if d.off != len(data) {
		return nil, wrapErr(ErrTrailingInput, d.off, "")
	}
	return item, nil
}

// ParseBytesPartial decodes at most one CBOR data item from the start of
// data. If data does not yet contain one complete item, it returns
// ok=false (not an error) so callers streaming a CBOR sequence (the
// cbor-seq wire type) know to read more before retrying. consumed is the
// number of bytes of data the item occupied.
func ParseBytesPartial(data []byte) (item DataItem, consumed int, ok bool, err error) {
	d := &decoder{data: data}
	item, err = d.parseItem()
	if err != nil {
		if err == ErrTruncated {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	return item, d.off, true, nil
}

func (d *decoder) parseItem() (DataItem, error) {
	d.depth++
	if d.depth > MaxNestingDepth {
		d.depth--
		return nil, wrapErr(ErrNestingTooDeep, d.off, "")
	}
	defer func() { d.depth-- }()

	if d.off >= len(d.data) {
		return nil, ErrTruncated
	}

	initial := d.data[d.off]
	major := initial & 0xe0
	ai := initial & 0x1f

	if ai == 31 {
		switch major {
		case majorByteStr:
			return d.parseIndefiniteByteString()
		case majorTextStr:
			return d.parseIndefiniteTextString()
		case majorArray:
			return d.parseIndefiniteArray()
		case majorMap:
			return d.parseIndefiniteMap()
		case majorSimple:
			return nil, wrapErr(ErrMalformed, d.off, `unexpected "break" outside indefinite-length container`)
		default:
			return nil, wrapErr(ErrMalformed, d.off, "invalid additional information 31 for this major type")
		}
	}

	width, value, err := d.readHead()
	if err != nil {
		return nil, err
	}

	switch major {
	case majorUnsigned:
		return Integer{Value: value, Width: width}, nil
	case majorNegative:
		return Negative{Value: value, Width: width}, nil
	case majorByteStr:
		return d.parseByteStringBody(value, width)
	case majorTextStr:
		return d.parseTextStringBody(value, width)
	case majorArray:
		return d.parseArrayBody(value, width)
	case majorMap:
		return d.parseMapBody(value, width)
	case majorTag:
		inner, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		return Tag{Number: value, Width: width, Value: inner}, nil
	case majorSimple:
		return d.parseSimpleOrFloat(ai, value)
	default:
		return nil, wrapErr(ErrMalformed, d.off, "unreachable major type")
	}
}

// readHead decodes the additional-info argument of the initial byte already
// known to not be 31 (indefinite/break), returning its resolved Width.
func (d *decoder) readHead() (Width, uint64, error) {
	ai := d.data[d.off] & 0x1f
	d.off++

	switch {
	case ai <= 23:
		return WidthZero, uint64(ai), nil
	case ai == 24:
		b, err := d.readN(1)
		if err != nil {
			return 0, 0, err
		}
		return WidthEight, uint64(b[0]), nil
	case ai == 25:
		b, err := d.readN(2)
		if err != nil {
			return 0, 0, err
		}
		return WidthSixteen, uint64(binary.BigEndian.Uint16(b)), nil
	case ai == 26:
		b, err := d.readN(4)
		if err != nil {
			return 0, 0, err
		}
		return WidthThirtyTwo, uint64(binary.BigEndian.Uint32(b)), nil
	case ai == 27:
		b, err := d.readN(8)
		if err != nil {
			return 0, 0, err
		}
		return WidthSixtyFour, binary.BigEndian.Uint64(b), nil
	default: // 28, 29, 30
		return 0, 0, wrapErr(ErrMalformed, d.off-1, "invalid additional information")
	}
}

func (d *decoder) readN(n int) ([]byte, error) {
	if len(d.data)-d.off < n {
		return nil, ErrTruncated
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) parseByteStringBody(length uint64, width Width) (DataItem, error) {
	n := int(length)
	if n < 0 || uint64(n) != length {
		return nil, wrapErr(ErrMalformed, d.off, "byte string length too large")
	}
	b, err := d.readN(n)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, b)
	return ByteString{Data: data, Width: width}, nil
}

func (d *decoder) parseTextStringBody(length uint64, width Width) (DataItem, error) {
	n := int(length)
	if n < 0 || uint64(n) != length {
		return nil, wrapErr(ErrMalformed, d.off, "text string length too large")
	}
	b, err := d.readN(n)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, wrapErr(ErrInvalidUTF8, d.off-n, "")
	}
	return TextString{Data: string(b), Width: width}, nil
}

func (d *decoder) parseArrayBody(count uint64, width Width) (DataItem, error) {
	items := make([]DataItem, 0, clampCap(count))
	for i := uint64(0); i < count; i++ {
		item, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	w := width
	return Array{Items: items, Width: &w}, nil
}

func (d *decoder) parseMapBody(count uint64, width Width) (DataItem, error) {
	pairs := make([]MapPair, 0, clampCap(count))
	for i := uint64(0); i < count; i++ {
		key, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		value, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, MapPair{Key: key, Value: value})
	}
	w := width
	return Map{Pairs: pairs, Width: &w}, nil
}

// clampCap avoids pre-allocating an enormous slice from an attacker-chosen
// length header; growth still happens incrementally via append.
func clampCap(count uint64) int {
	const max = 4096
	if count > max {
		return max
	}
	return int(count)
}

func (d *decoder) foundBreak() bool {
	if d.off < len(d.data) && d.data[d.off] == cborBreak {
		d.off++
		return true
	}
	return false
}

func (d *decoder) parseIndefiniteByteString() (DataItem, error) {
	d.off++ // consume initial byte
	var chunks []ByteString
	for {
		if d.off >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.foundBreak() {
			return IndefiniteByteString{Chunks: chunks}, nil
		}
		if d.data[d.off]&0xe0 != majorByteStr || d.data[d.off]&0x1f == 31 {
			return nil, wrapErr(ErrMalformed, d.off, "indefinite byte string chunk must be a definite-length byte string")
		}
		item, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, item.(ByteString))
	}
}

func (d *decoder) parseIndefiniteTextString() (DataItem, error) {
	d.off++
	var chunks []TextString
	for {
		if d.off >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.foundBreak() {
			return IndefiniteTextString{Chunks: chunks}, nil
		}
		if d.data[d.off]&0xe0 != majorTextStr || d.data[d.off]&0x1f == 31 {
			return nil, wrapErr(ErrMalformed, d.off, "indefinite text string chunk must be a definite-length text string")
		}
		item, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, item.(TextString))
	}
}

func (d *decoder) parseIndefiniteArray() (DataItem, error) {
	d.off++
	var items []DataItem
	for {
		if d.off >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.foundBreak() {
			return Array{Items: items, Width: nil}, nil
		}
		item, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (d *decoder) parseIndefiniteMap() (DataItem, error) {
	d.off++
	var pairs []MapPair
	for {
		if d.off >= len(d.data) {
			return nil, ErrTruncated
		}
		if d.foundBreak() {
			return Map{Pairs: pairs, Width: nil}, nil
		}
		key, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		if d.off >= len(d.data) {
			return nil, ErrTruncated
		}
		value, err := d.parseItem()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, MapPair{Key: key, Value: value})
	}
}

func (d *decoder) parseSimpleOrFloat(ai byte, value uint64) (DataItem, error) {
	switch ai {
	case 25:
		return Float{Value: float64(float16.Frombits(uint16(value)).Float32()), Width: FloatWidthSixteen}, nil
	case 26:
		return Float{Value: float64(math.Float32frombits(uint32(value))), Width: FloatWidthThirtyTwo}, nil
	case 27:
		return Float{Value: math.Float64frombits(value), Width: FloatWidthSixtyFour}, nil
	default:
		if ai == 24 && value < 32 {
			return nil, wrapErr(ErrMalformed, d.off, "invalid simple value encoding")
		}
		if value > 255 {
			return nil, wrapErr(ErrMalformed, d.off, "simple value out of range")
		}
		return Simple(value), nil
	}
}
