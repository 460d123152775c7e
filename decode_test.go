// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"errors"
	"testing"
)

func TestParseBytesScenarios(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want DataItem
	}{
		{"S1", "17", Integer{Value: 23, Width: WidthZero}},
		{"S2", "1818", Integer{Value: 24, Width: WidthEight}},
		{"S3", "37", Negative{Value: 23, Width: WidthZero}},
		{"S4", "4568656c6c6f", ByteString{Data: []byte("hello"), Width: WidthZero}},
		{"S5", "40", ByteString{Data: []byte{}, Width: WidthZero}},
		{"S6", "f4", Simple(SimpleFalse)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := ParseBytes(hexBytes(t, tt.hex))
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.hex, err)
			}
			if !Equal(item, tt.want) {
				t.Errorf("ParseBytes(%q) = %#v, want %#v", tt.hex, item, tt.want)
			}
		})
	}
}

// TestBinaryRoundTrip is invariant 1 from spec §8: for every DataItem
// produced by ParseBytes(b), ToBytes() returns exactly b.
func TestBinaryRoundTrip(t *testing.T) {
	samples := []string{
		"00", "17", "1818", "190100", "1a00010000", "1b0000000100000000",
		"20", "37", "380a",
		"4568656c6c6f", "40",
		"6568656c6c6f", "60",
		"83010203",
		"9f01ff",
		"a201020304",
		"bf616101616202ff",
		"c074323031332d30332d32315432303a30343a30305a",
		"f4", "f5", "f6", "f7",
		"f93e00", "fa47c35000", "fb400921fb54442d18",
		"5f42010243030405ff",
		"7f6568656c6c6f646d617279ff",
	}
	for _, h := range samples {
		t.Run(h, func(t *testing.T) {
			raw := hexBytes(t, h)
			item, err := ParseBytes(raw)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", h, err)
			}
			got := ToBytes(item)
			if !bytesEqual(got, raw) {
				t.Errorf("round trip mismatch: % x != % x", got, raw)
			}
		})
	}
}

// TestPartialMonotonicity is invariant 2 from spec §8.
func TestPartialMonotonicity(t *testing.T) {
	full := hexBytes(t, "83010203") // array of three inline integers, 4 bytes total
	for n := 0; n < len(full); n++ {
		_, _, ok, err := ParseBytesPartial(full[:n])
		if err != nil {
			t.Fatalf("ParseBytesPartial(prefix %d) unexpected error: %v", n, err)
		}
		if ok {
			t.Errorf("ParseBytesPartial(prefix %d of %d) = ok, want not-yet-complete", n, len(full))
		}
	}
	item, consumed, ok, err := ParseBytesPartial(full)
	if err != nil || !ok {
		t.Fatalf("ParseBytesPartial(full) = (%v, %v, %v, %v), want complete", item, consumed, ok, err)
	}
	if consumed != len(full) {
		t.Errorf("ParseBytesPartial(full) consumed = %d, want %d", consumed, len(full))
	}
}

func TestParseBytesTrailingInput(t *testing.T) {
	_, err := ParseBytes(hexBytes(t, "1700"))
	if !errors.Is(err, ErrTrailingInput) {
		t.Errorf("ParseBytes with trailing byte: err = %v, want ErrTrailingInput", err)
	}
}

func TestParseBytesMalformed(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"reserved additional info 28", "1c"},
		{"stray break", "ff"},
		{"indefinite bytestring chunk not bytestring", "5f00ff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(hexBytes(t, tt.hex))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseBytes(%q) err = %v, want ErrMalformed", tt.hex, err)
			}
		})
	}
}

func TestParseBytesInvalidUTF8(t *testing.T) {
	_, err := ParseBytes(hexBytes(t, "61ff"))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("ParseBytes(invalid utf8 text string) err = %v, want ErrInvalidUTF8", err)
	}
}

func TestParseBytesTruncated(t *testing.T) {
	_, err := ParseBytes(hexBytes(t, "1818")[:1])
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseBytes(truncated) err = %v, want ErrMalformed (truncation is fatal via ParseBytes)", err)
	}
}

func TestNestingTooDeep(t *testing.T) {
	old := MaxNestingDepth
	MaxNestingDepth = 2
	defer func() { MaxNestingDepth = old }()

	deep := ToBytes(Array{Items: []DataItem{Array{Items: []DataItem{Array{Items: []DataItem{}, Width: widthPtr(WidthZero)}}, Width: widthPtr(WidthZero)}}, Width: widthPtr(WidthZero)})
	_, err := ParseBytes(deep)
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("ParseBytes(3-deep array, MaxNestingDepth=2) err = %v, want ErrNestingTooDeep", err)
	}
}
