// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlainSinkIgnoresStyle(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPlainSink(&buf)
	err := sink.Style(ColorRed, IntensityFaint, func() error {
		return writeString(sink, "hi")
	})
	if err != nil {
		t.Fatalf("Style error: %v", err)
	}
	if buf.String() != "hi" {
		t.Errorf("PlainSink.Style wrote %q, want %q (no escape codes)", buf.String(), "hi")
	}
}

func TestAnsiSinkEmitsAndRestoresStyle(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAnsiSink(&buf)
	err := sink.Style(ColorGreen, IntensityNormal, func() error {
		return writeString(sink, "ok")
	})
	if err != nil {
		t.Fatalf("Style error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[0;32m") {
		t.Errorf("AnsiSink.Style(green) output %q missing green SGR code", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m") {
		t.Errorf("AnsiSink.Style should restore to no-style on exit, got %q", out)
	}
}

func TestAnsiSinkNestedStyleRestoresEnclosing(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAnsiSink(&buf)
	err := sink.Style(ColorRed, IntensityNormal, func() error {
		if err := writeString(sink, "outer-"); err != nil {
			return err
		}
		if err := sink.Style(ColorBlue, IntensityNormal, func() error {
			return writeString(sink, "inner")
		}); err != nil {
			return err
		}
		return writeString(sink, "-outer")
	})
	if err != nil {
		t.Fatalf("Style error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[0;31mouter-") {
		t.Errorf("missing opening red SGR before outer text: %q", out)
	}
	if !strings.Contains(out, "\x1b[0;34minner") {
		t.Errorf("missing blue SGR before inner text: %q", out)
	}
	// After the inner Style call returns, the sink must restore red (the
	// enclosing style), not reset to no-style.
	if !strings.Contains(out, "\x1b[0;31m-outer") {
		t.Errorf("nested Style did not restore enclosing red style: %q", out)
	}
}

func TestSgrCodes(t *testing.T) {
	if codes := sgrCodes(ColorNone, IntensityNormal); codes != nil {
		t.Errorf("sgrCodes(none, normal) = %v, want nil", codes)
	}
	codes := sgrCodes(ColorYellow, IntensityFaint)
	want := []string{"0", "33", "2"}
	if len(codes) != len(want) {
		t.Fatalf("sgrCodes(yellow, faint) = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("sgrCodes(yellow, faint)[%d] = %q, want %q", i, codes[i], want[i])
		}
	}
}
