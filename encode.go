// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

const (
	majorUnsigned  = 0x00
	majorNegative  = 0x20
	majorByteStr   = 0x40
	majorTextStr   = 0x60
	majorArray     = 0x80
	majorMap       = 0xa0
	majorTag       = 0xc0
	majorSimple    = 0xe0
	cborBreak byte = 0xff
)

// narrowestWidth picks the narrowest Width that can hold value without loss,
// following the "0..23 inline, else smallest power-of-two header" rule from
// spec §4.2 (ground truth: original_source/src/encode/hex.rs's
// integer_to_hex, which performs the identical ladder).
func narrowestWidth(value uint64) Width {
	switch {
	case value < 24:
		return WidthZero
	case value <= math.MaxUint8:
		return WidthEight
	case value <= math.MaxUint16:
		return WidthSixteen
	case value <= math.MaxUint32:
		return WidthThirtyTwo
	default:
		return WidthSixtyFour
	}
}

func resolveWidth(w Width, value uint64) Width {
	if w == WidthUnknown {
		return narrowestWidth(value)
	}
	return w
}

// ToBytes serializes item to its CBOR binary encoding. When a Width is
// WidthUnknown, the narrowest legal width is chosen. ToBytes never fails:
// every well-formed DataItem has a valid binary encoding.
func ToBytes(item DataItem) []byte {
	var buf bytes.Buffer
	buf.Grow(32)
	encodeInto(&buf, item)
	return buf.Bytes()
}

// Encode is an alias for ToBytes kept for call sites that read more
// naturally as a free function (e.g. Equal).
func Encode(item DataItem) []byte { return ToBytes(item) }

func encodeInto(buf *bytes.Buffer, item DataItem) {
	switch v := item.(type) {
	case Integer:
		encodeHead(buf, majorUnsigned, resolveWidth(v.Width, v.Value), v.Value)
	case Negative:
		encodeHead(buf, majorNegative, resolveWidth(v.Width, v.Value), v.Value)
	case Float:
		encodeFloat(buf, v)
	case ByteString:
		w := resolveWidth(v.Width, uint64(len(v.Data)))
		encodeHead(buf, majorByteStr, w, uint64(len(v.Data)))
		buf.Write(v.Data)
	case IndefiniteByteString:
		buf.WriteByte(majorByteStr | 0x1f)
		for _, chunk := range v.Chunks {
			encodeInto(buf, chunk)
		}
		buf.WriteByte(cborBreak)
	case TextString:
		data := []byte(v.Data)
		w := resolveWidth(v.Width, uint64(len(data)))
		encodeHead(buf, majorTextStr, w, uint64(len(data)))
		buf.Write(data)
	case IndefiniteTextString:
		buf.WriteByte(majorTextStr | 0x1f)
		for _, chunk := range v.Chunks {
			encodeInto(buf, chunk)
		}
		buf.WriteByte(cborBreak)
	case Array:
		if v.Width == nil {
			buf.WriteByte(majorArray | 0x1f)
			for _, elem := range v.Items {
				encodeInto(buf, elem)
			}
			buf.WriteByte(cborBreak)
			return
		}
		w := resolveWidth(*v.Width, uint64(len(v.Items)))
		encodeHead(buf, majorArray, w, uint64(len(v.Items)))
		for _, elem := range v.Items {
			encodeInto(buf, elem)
		}
	case Map:
		if v.Width == nil {
			buf.WriteByte(majorMap | 0x1f)
			for _, pair := range v.Pairs {
				encodeInto(buf, pair.Key)
				encodeInto(buf, pair.Value)
			}
			buf.WriteByte(cborBreak)
			return
		}
		w := resolveWidth(*v.Width, uint64(len(v.Pairs)))
		encodeHead(buf, majorMap, w, uint64(len(v.Pairs)))
		for _, pair := range v.Pairs {
			encodeInto(buf, pair.Key)
			encodeInto(buf, pair.Value)
		}
	case Tag:
		encodeHead(buf, majorTag, resolveWidth(v.Width, v.Number), v.Number)
		encodeInto(buf, v.Value)
	case Simple:
		encodeSimple(buf, v)
	default:
		panic("cbordiag: unknown DataItem implementation")
	}
}

// encodeHead writes a CBOR initial byte plus its follow-on argument bytes
// for major type "major" with the given resolved width and argument value.
func encodeHead(buf *bytes.Buffer, major byte, w Width, value uint64) {
	switch w {
	case WidthZero:
		buf.WriteByte(major | byte(value))
	case WidthEight:
		buf.WriteByte(major | 24)
		buf.WriteByte(byte(value))
	case WidthSixteen:
		buf.WriteByte(major | 25)
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(value))
		buf.Write(b[:])
	case WidthThirtyTwo:
		buf.WriteByte(major | 26)
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(value))
		buf.Write(b[:])
	case WidthSixtyFour:
		buf.WriteByte(major | 27)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], value)
		buf.Write(b[:])
	default:
		panic("cbordiag: unresolved width reached encodeHead")
	}
}

func encodeFloat(buf *bytes.Buffer, f Float) {
	width := f.Width
	if width == FloatWidthUnknown {
		width = narrowestFloatWidth(f.Value)
	}
	switch width {
	case FloatWidthSixteen:
		buf.WriteByte(majorSimple | 25)
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], float16.Fromfloat32(float32(f.Value)).Bits())
		buf.Write(b[:])
	case FloatWidthThirtyTwo:
		buf.WriteByte(majorSimple | 26)
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(f.Value)))
		buf.Write(b[:])
	default:
		buf.WriteByte(majorSimple | 27)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(f.Value))
		buf.Write(b[:])
	}
}

// narrowestFloatWidth is only consulted for Width==Unknown floats, which
// arise from diagnostic notation without a `_N` suffix and from hand-built
// DataItems (the binary decoder always sets an explicit width). It picks
// half precision if the value survives an exact half-precision round trip,
// else single precision if it survives an exact single-precision round
// trip, else double precision.
func narrowestFloatWidth(v float64) FloatWidth {
	if half := float16.Fromfloat32(float32(v)); float64(half.Float32()) == v {
		return FloatWidthSixteen
	}
	if float64(float32(v)) == v {
		return FloatWidthThirtyTwo
	}
	return FloatWidthSixtyFour
}

func encodeSimple(buf *bytes.Buffer, s Simple) {
	if s <= 23 {
		buf.WriteByte(majorSimple | byte(s))
		return
	}
	buf.WriteByte(majorSimple | 24)
	buf.WriteByte(byte(s))
}
