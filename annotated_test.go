// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import "testing"

func TestAnnotatedHexScenarios(t *testing.T) {
	tests := []struct {
		name string
		item DataItem
		want string
	}{
		{"S1", Integer{Value: 23, Width: WidthZero}, "17 # unsigned(23)"},
		{"S2", Integer{Value: 24, Width: WidthEight}, "18 18 # unsigned(24)"},
		{"S3", Negative{Value: 23, Width: WidthZero}, "37 # negative(23)"},
		{"S5", ByteString{Data: []byte{}, Width: WidthZero}, "40  # bytes(0)\n    # \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnnotatedHex(tt.item); got != tt.want {
				t.Errorf("AnnotatedHex(%#v) = %q, want %q", tt.item, got, tt.want)
			}
		})
	}
}

func TestAnnotatedHexByteStringPayload(t *testing.T) {
	item := ByteString{Data: []byte("hello"), Width: WidthZero}
	got := AnnotatedHex(item)
	want := "45                # bytes(5)\n   68 65 6c 6c 6f # \"hello\""
	if got != want {
		t.Errorf("AnnotatedHex(hello) =\n%q\nwant\n%q", got, want)
	}
}

func TestAnnotatedHexWraps16BytesPerLine(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	got := AnnotatedHex(ByteString{Data: data, Width: WidthUnknown})
	lineCount := 1
	for _, c := range got {
		if c == '\n' {
			lineCount++
		}
	}
	if lineCount != 3 { // header + two 16/4-byte payload lines
		t.Errorf("AnnotatedHex(20 bytes) has %d lines, want 3", lineCount)
	}
}

func TestAnnotatedHexSimpleReservedUnassigned(t *testing.T) {
	tests := []struct {
		v    Simple
		word string
	}{
		{SimpleFalse, "false"},
		{25, "reserved"},
		{40, "unassigned"},
	}
	for _, tt := range tests {
		got := AnnotatedHex(tt.v)
		if !containsSubstring(got, tt.word) {
			t.Errorf("AnnotatedHex(Simple(%d)) = %q, want to contain %q", tt.v, got, tt.word)
		}
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestAnnotatedHexNestedContainers(t *testing.T) {
	item := Array{Items: []DataItem{
		Integer{Value: 1, Width: WidthZero},
		Tag{Number: 0, Width: WidthZero, Value: TextString{Data: "x", Width: WidthZero}},
	}, Width: widthPtr(WidthZero)}
	got := AnnotatedHex(item)
	if !containsSubstring(got, "array(2)") {
		t.Errorf("AnnotatedHex(array) = %q, want to contain array(2)", got)
	}
	if !containsSubstring(got, "tag(0)") {
		t.Errorf("AnnotatedHex(array) = %q, want to contain tag(0)", got)
	}
}
