// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"fmt"
	"io"
	"strings"
)

// Color names the semantic colors the diagnostic encoder applies. They
// correspond to the roles spec §4.5 assigns, not to concrete terminal
// colors — a Sink implementation decides what each Color renders as.
type Color uint8

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorBlue
	ColorYellow
	ColorCyan
	ColorMagenta
)

// Intensity is a style modifier orthogonal to Color; diagnostic notation
// uses Faint for the `_N` width suffixes and the byte-string delimiters.
type Intensity uint8

const (
	IntensityNormal Intensity = iota
	IntensityFaint
)

// Sink is the abstract styled-text writer the diagnostic encoder renders
// into. Style applies a (Color, Intensity) for the duration of fn and
// restores whatever style was active before; implementations must nest
// correctly (a Style call inside another Style call pops back to the
// *enclosing* style, not to "no style", on return).
type Sink interface {
	io.Writer
	WriteByte(c byte) error
	Style(color Color, intensity Intensity, fn func() error) error
}

// PlainSink drops all styling and writes unadorned text. It is the sink
// CLI-style consumers should use when color is disabled or stdout is not a
// terminal.
type PlainSink struct {
	w io.Writer
}

// NewPlainSink wraps w as a Sink that ignores all style information.
func NewPlainSink(w io.Writer) *PlainSink { return &PlainSink{w: w} }

func (s *PlainSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *PlainSink) WriteByte(c byte) error {
	_, err := s.w.Write([]byte{c})
	return err
}

func (s *PlainSink) Style(_ Color, _ Intensity, fn func() error) error { return fn() }

// AnsiSink emits SGR (Select Graphic Rendition) escape sequences on style
// boundaries and restores the enclosing style when a nested Style call
// returns, so styles compose the way a terminal expects.
type AnsiSink struct {
	w     io.Writer
	stack []sgrState
}

type sgrState struct {
	color     Color
	intensity Intensity
}

// NewAnsiSink wraps w as a Sink that emits ANSI color codes.
func NewAnsiSink(w io.Writer) *AnsiSink {
	return &AnsiSink{w: w, stack: []sgrState{{ColorNone, IntensityNormal}}}
}

func (s *AnsiSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *AnsiSink) WriteByte(c byte) error {
	_, err := s.w.Write([]byte{c})
	return err
}

func (s *AnsiSink) Style(color Color, intensity Intensity, fn func() error) error {
	if err := s.push(color, intensity); err != nil {
		return err
	}
	err := fn()
	if popErr := s.pop(); popErr != nil && err == nil {
		err = popErr
	}
	return err
}

func (s *AnsiSink) push(color Color, intensity Intensity) error {
	s.stack = append(s.stack, sgrState{color, intensity})
	return s.writeSGR(color, intensity)
}

func (s *AnsiSink) pop() error {
	s.stack = s.stack[:len(s.stack)-1]
	enclosing := s.stack[len(s.stack)-1]
	return s.writeSGR(enclosing.color, enclosing.intensity)
}

func (s *AnsiSink) writeSGR(color Color, intensity Intensity) error {
	codes := sgrCodes(color, intensity)
	if len(codes) == 0 {
		_, err := io.WriteString(s.w, "\x1b[0m")
		return err
	}
	_, err := fmt.Fprintf(s.w, "\x1b[%sm", strings.Join(codes, ";"))
	return err
}

func sgrCodes(color Color, intensity Intensity) []string {
	var codes []string
	switch color {
	case ColorGreen:
		codes = append(codes, "32")
	case ColorRed:
		codes = append(codes, "31")
	case ColorBlue:
		codes = append(codes, "34")
	case ColorYellow:
		codes = append(codes, "33")
	case ColorCyan:
		codes = append(codes, "36")
	case ColorMagenta:
		codes = append(codes, "35")
	}
	if intensity == IntensityFaint {
		codes = append(codes, "2")
	}
	if len(codes) == 0 {
		return nil
	}
	// Reset first so nested colors don't compound (e.g. bold-green inside
	// faint never happens in this encoder, but resetting keeps Style's
	// "pop to enclosing" contract simple and correct either way).
	return append([]string{"0"}, codes...)
}

// writeString is a small helper mirroring the teacher's diagnose.go
// writeString, used throughout diag_encode.go.
func writeString(s Sink, str string) error {
	_, err := io.WriteString(s, str)
	return err
}
