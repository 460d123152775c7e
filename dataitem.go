// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import "bytes"

// Width records the on-wire argument encoding chosen for a CBOR integer
// header (major types 0, 1, 6) or a definite-length string/array/map
// header. Zero means the value was packed directly into the initial byte's
// additional-info field (0..23); Unknown is used on construction from
// diagnostic notation without an explicit `_N` suffix and instructs the
// binary encoder to choose the narrowest width that represents the value
// losslessly.
type Width uint8

const (
	WidthUnknown Width = iota
	WidthZero
	WidthEight
	WidthSixteen
	WidthThirtyTwo
	WidthSixtyFour
)

func (w Width) String() string {
	switch w {
	case WidthUnknown:
		return "unknown"
	case WidthZero:
		return "zero"
	case WidthEight:
		return "eight"
	case WidthSixteen:
		return "sixteen"
	case WidthThirtyTwo:
		return "thirty-two"
	case WidthSixtyFour:
		return "sixty-four"
	default:
		return "invalid width"
	}
}

// suffix returns the diagnostic-notation `_N` encoding digit for an
// explicit width, or ("", false) for Zero/Unknown which never get a suffix.
func (w Width) suffix() (string, bool) {
	switch w {
	case WidthEight:
		return "0", true
	case WidthSixteen:
		return "1", true
	case WidthThirtyTwo:
		return "2", true
	case WidthSixtyFour:
		return "3", true
	default:
		return "", false
	}
}

// widthFromIntSuffix maps a diagnostic `_N` digit (N in 0..3) to a Width,
// for integers and tags.
func widthFromIntSuffix(n int) (Width, bool) {
	switch n {
	case 0:
		return WidthEight, true
	case 1:
		return WidthSixteen, true
	case 2:
		return WidthThirtyTwo, true
	case 3:
		return WidthSixtyFour, true
	default:
		return WidthUnknown, false
	}
}

// FloatWidth records the on-wire precision of a Float. The logical value is
// always stored at float64 precision; FloatWidth only remembers which
// header (major type 7, additional info 25/26/27) produced it.
type FloatWidth uint8

const (
	FloatWidthUnknown FloatWidth = iota
	FloatWidthSixteen
	FloatWidthThirtyTwo
	FloatWidthSixtyFour
)

func (w FloatWidth) String() string {
	switch w {
	case FloatWidthUnknown:
		return "unknown"
	case FloatWidthSixteen:
		return "sixteen"
	case FloatWidthThirtyTwo:
		return "thirty-two"
	case FloatWidthSixtyFour:
		return "sixty-four"
	default:
		return "invalid float width"
	}
}

// widthFromFloatSuffix maps a diagnostic `_N` digit (N in 1..3) to a
// FloatWidth.
func widthFromFloatSuffix(n int) (FloatWidth, bool) {
	switch n {
	case 1:
		return FloatWidthSixteen, true
	case 2:
		return FloatWidthThirtyTwo, true
	case 3:
		return FloatWidthSixtyFour, true
	default:
		return FloatWidthUnknown, false
	}
}

func (w FloatWidth) suffix() (string, bool) {
	switch w {
	case FloatWidthSixteen:
		return "1", true
	case FloatWidthThirtyTwo:
		return "2", true
	case FloatWidthSixtyFour:
		return "3", true
	default:
		return "", false
	}
}

// DataItem is a CBOR value that preserves every encoding detail the
// abstract value model normally discards. It is a closed sum type: the only
// implementations are the types declared in this file. DataItems are
// immutable after construction and form a tree (Tag/Array/Map own their
// children); there are no shared subtrees and no cycles.
type DataItem interface {
	isDataItem()
}

// Integer is a non-negative CBOR integer (major type 0).
type Integer struct {
	Value uint64
	Width Width
}

func (Integer) isDataItem() {}

// Negative is a CBOR negative integer (major type 1). The logical value is
// -1-Value, so Value==0 means -1; the range extends to -2^64, one more
// negative value than fits in an int64.
type Negative struct {
	Value uint64
	Width Width
}

func (Negative) isDataItem() {}

// Signed returns the logical value as a big.Int-free pair: ok is false only
// when the magnitude does not fit in an int64 (Value > math.MaxInt64),
// in which case callers needing the exact value should use big.Int
// themselves (see diag_encode.go's negativeDecimal for that path).
func (n Negative) Signed() (v int64, ok bool) {
	if n.Value > 1<<63-1 {
		return 0, false
	}
	return -1 - int64(n.Value), true
}

// Float is a CBOR floating point value (major type 7, additional info
// 25/26/27). Value is always stored at float64 precision; Width records
// which on-wire precision produced it. A Float with Width==FloatWidthSixteen
// must have a Value exactly representable in IEEE 754 half precision
// (respectively ThirtyTwo/single).
type Float struct {
	Value float64
	Width FloatWidth
}

func (Float) isDataItem() {}

// ByteString is a definite-length CBOR byte string (major type 2).
type ByteString struct {
	Data  []byte
	Width Width
}

func (ByteString) isDataItem() {}

// IndefiniteByteString is a CBOR indefinite-length byte string (major type
// 2, additional info 31): a sequence of definite-length chunks, each
// preserving its own header width. Chunks may be empty.
type IndefiniteByteString struct {
	Chunks []ByteString
}

func (IndefiniteByteString) isDataItem() {}

// TextString is a definite-length, UTF-8 CBOR text string (major type 3).
// Data is always valid UTF-8.
type TextString struct {
	Data  string
	Width Width
}

func (TextString) isDataItem() {}

// IndefiniteTextString is a CBOR indefinite-length text string (major type
// 3, additional info 31).
type IndefiniteTextString struct {
	Chunks []TextString
}

func (IndefiniteTextString) isDataItem() {}

// Array is a CBOR array (major type 4). Width is nil for an indefinite-
// length array (additional info 31) and points at the header width
// otherwise.
type Array struct {
	Items []DataItem
	Width *Width
}

func (Array) isDataItem() {}

// MapPair is one key/value entry of a Map. Order is significant: Map does
// not sort or deduplicate entries, and re-encoding reproduces the stored
// order exactly.
type MapPair struct {
	Key   DataItem
	Value DataItem
}

// Map is a CBOR map (major type 5). Duplicate keys are preserved exactly as
// decoded; nothing in this package normalizes or rejects them.
type Map struct {
	Pairs []MapPair
	Width *Width
}

func (Map) isDataItem() {}

// Tag is a CBOR semantic tag (major type 6) prefixing a single value, which
// it owns.
type Tag struct {
	Number uint64
	Width  Width
	Value  DataItem
}

func (Tag) isDataItem() {}

// Simple is a CBOR simple value (major type 7, additional info 0..23 or
// one-byte follow-on 32..255). 20/21/22/23 are false/true/null/undefined;
// 24..31 are reserved by RFC 8949 and are encoded but not named; the rest
// are unassigned.
type Simple uint8

func (Simple) isDataItem() {}

const (
	SimpleFalse     Simple = 20
	SimpleTrue      Simple = 21
	SimpleNull      Simple = 22
	SimpleUndefined Simple = 23
)

// Equal reports whether a and b decode to the same DataItem tree, meaning
// their binary encodings are byte-identical. This is the definition of
// equality the spec mandates: rather than compare trees field-by-field
// (which would have to special-case e.g. Width==Unknown vs the concrete
// width it resolves to), we simply re-encode both sides and compare bytes.
func Equal(a, b DataItem) bool {
	return bytes.Equal(Encode(a), Encode(b))
}
