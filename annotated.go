// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"bytes"
	"fmt"
	"strings"
)

// AnnotatedHex renders item as annotated hexadecimal (spec §4.6): the exact
// bytes of its binary encoding, grouped by CBOR token, each group followed
// by a right-aligned `# `-prefixed comment naming what the bytes mean.
// Container and tag headers recurse into their children at one deeper
// indent level; byte and text string payloads wrap at 16 bytes per line the
// way original_source/src/encode/hex.rs's bytestring_to_hex does.
func AnnotatedHex(item DataItem) string {
	lines := annotateItem(item, 0)
	return renderAnnotatedLines(lines)
}

// annotatedLine is one row of annotated-hex output: hex holds the already
// space-grouped hex digits for this row (sans indent), comment is the text
// that follows "# ", and indent is the nesting depth in 3-space units,
// matching the 3-space body indent original_source uses under a bytestring
// header.
type annotatedLine struct {
	hex     string
	comment string
	indent  int
}

func renderAnnotatedLines(lines []annotatedLine) string {
	width := 0
	for _, l := range lines {
		if n := len(l.indentPrefix()) + len(l.hex); n > width {
			width = n
		}
	}

	var buf bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		prefix := l.indentPrefix() + l.hex
		buf.WriteString(prefix)
		buf.WriteString(strings.Repeat(" ", width-len(prefix)))
		if l.comment != "" {
			buf.WriteString(" # ")
			buf.WriteString(l.comment)
		}
	}
	return buf.String()
}

func (l annotatedLine) indentPrefix() string {
	return strings.Repeat("   ", l.indent)
}

func annotateItem(item DataItem, indent int) []annotatedLine {
	switch v := item.(type) {
	case Integer:
		head := headBytes(majorUnsigned, resolveWidth(v.Width, v.Value), v.Value)
		return []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("unsigned(%d)", v.Value), indent: indent}}
	case Negative:
		head := headBytes(majorNegative, resolveWidth(v.Width, v.Value), v.Value)
		return []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("negative(%d)", v.Value), indent: indent}}
	case Float:
		return []annotatedLine{{hex: hexEncodeSpaced(floatBytes(v)), comment: fmt.Sprintf("float(%s)", formatFloat64(v.Value)), indent: indent}}
	case ByteString:
		return annotateByteString(v, indent)
	case IndefiniteByteString:
		return annotateIndefiniteByteString(v, indent)
	case TextString:
		return annotateTextString(v, indent)
	case IndefiniteTextString:
		return annotateIndefiniteTextString(v, indent)
	case Array:
		return annotateArray(v, indent)
	case Map:
		return annotateMap(v, indent)
	case Tag:
		return annotateTag(v, indent)
	case Simple:
		return annotateSimple(v, indent)
	default:
		return []annotatedLine{{comment: "unknown data item", indent: indent}}
	}
}

func headBytes(major byte, w Width, value uint64) []byte {
	var buf bytes.Buffer
	encodeHead(&buf, major, w, value)
	return buf.Bytes()
}

func floatBytes(f Float) []byte {
	var buf bytes.Buffer
	encodeFloat(&buf, f)
	return buf.Bytes()
}

func hexEncodeSpaced(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = hexEncodeLower([]byte{b})
	}
	return strings.Join(parts, " ")
}

func annotateByteString(v ByteString, indent int) []annotatedLine {
	w := resolveWidth(v.Width, uint64(len(v.Data)))
	head := headBytes(majorByteStr, w, uint64(len(v.Data)))
	lines := []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("bytes(%d)", len(v.Data)), indent: indent}}
	return append(lines, chunkPayload(v.Data, indent, "\"%s\"", escapeAnnotatedASCII)...)
}

func annotateTextString(v TextString, indent int) []annotatedLine {
	data := []byte(v.Data)
	w := resolveWidth(v.Width, uint64(len(data)))
	head := headBytes(majorTextStr, w, uint64(len(data)))
	lines := []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("text(%d)", len(v.Data)), indent: indent}}
	return append(lines, chunkPayload(data, indent, "\"%s\"", escapeAnnotatedASCII)...)
}

// chunkPayload renders data 16 bytes per line, each hex group commented
// with format applied to the escaped text of that chunk — mirroring
// original_source's bytestring_to_hex loop, generalized to text strings too.
func chunkPayload(data []byte, indent int, format string, escape func([]byte) string) []annotatedLine {
	if len(data) == 0 {
		return []annotatedLine{{comment: fmt.Sprintf(format, ""), indent: indent + 1}}
	}
	var lines []annotatedLine
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		lines = append(lines, annotatedLine{
			hex:     hexEncodeSpaced(chunk),
			comment: fmt.Sprintf(format, escape(chunk)),
			indent:  indent + 1,
		})
	}
	return lines
}

// escapeAnnotatedASCII mirrors Rust's ascii::escape_default: printable ASCII
// passes through, \t \r \n \\ \" get their short escapes, everything else
// becomes \xHH.
func escapeAnnotatedASCII(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		switch {
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '"':
			b.WriteString(`\"`)
		case c >= 0x20 && c <= 0x7e:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}

func annotateIndefiniteByteString(v IndefiniteByteString, indent int) []annotatedLine {
	lines := []annotatedLine{{hex: hexEncodeLower([]byte{majorByteStr | 0x1f}), comment: "bytes(*)", indent: indent}}
	for _, chunk := range v.Chunks {
		lines = append(lines, annotateByteString(chunk, indent+1)...)
	}
	lines = append(lines, annotatedLine{hex: hexEncodeLower([]byte{cborBreak}), comment: "break", indent: indent})
	return lines
}

func annotateIndefiniteTextString(v IndefiniteTextString, indent int) []annotatedLine {
	lines := []annotatedLine{{hex: hexEncodeLower([]byte{majorTextStr | 0x1f}), comment: "text(*)", indent: indent}}
	for _, chunk := range v.Chunks {
		lines = append(lines, annotateTextString(chunk, indent+1)...)
	}
	lines = append(lines, annotatedLine{hex: hexEncodeLower([]byte{cborBreak}), comment: "break", indent: indent})
	return lines
}

func annotateArray(v Array, indent int) []annotatedLine {
	var lines []annotatedLine
	if v.Width == nil {
		lines = append(lines, annotatedLine{hex: hexEncodeLower([]byte{majorArray | 0x1f}), comment: "array(*)", indent: indent})
		for _, item := range v.Items {
			lines = append(lines, annotateItem(item, indent+1)...)
		}
		return append(lines, annotatedLine{hex: hexEncodeLower([]byte{cborBreak}), comment: "break", indent: indent})
	}
	w := resolveWidth(*v.Width, uint64(len(v.Items)))
	head := headBytes(majorArray, w, uint64(len(v.Items)))
	lines = append(lines, annotatedLine{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("array(%d)", len(v.Items)), indent: indent})
	for _, item := range v.Items {
		lines = append(lines, annotateItem(item, indent+1)...)
	}
	return lines
}

func annotateMap(v Map, indent int) []annotatedLine {
	var lines []annotatedLine
	if v.Width == nil {
		lines = append(lines, annotatedLine{hex: hexEncodeLower([]byte{majorMap | 0x1f}), comment: "map(*)", indent: indent})
		for _, pair := range v.Pairs {
			lines = append(lines, annotateItem(pair.Key, indent+1)...)
			lines = append(lines, annotateItem(pair.Value, indent+1)...)
		}
		return append(lines, annotatedLine{hex: hexEncodeLower([]byte{cborBreak}), comment: "break", indent: indent})
	}
	w := resolveWidth(*v.Width, uint64(len(v.Pairs)))
	head := headBytes(majorMap, w, uint64(len(v.Pairs)))
	lines = append(lines, annotatedLine{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("map(%d)", len(v.Pairs)), indent: indent})
	for _, pair := range v.Pairs {
		lines = append(lines, annotateItem(pair.Key, indent+1)...)
		lines = append(lines, annotateItem(pair.Value, indent+1)...)
	}
	return lines
}

func annotateTag(v Tag, indent int) []annotatedLine {
	head := headBytes(majorTag, resolveWidth(v.Width, v.Number), v.Number)
	lines := []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("tag(%d)", v.Number), indent: indent}}
	return append(lines, annotateItem(v.Value, indent+1)...)
}

// annotateSimple matches original_source/src/encode/hex.rs's simple_to_hex
// naming exactly: false/true/null/undefined get their own word, 24..=31 are
// "reserved", everything else not a named constant is "unassigned".
func annotateSimple(v Simple, indent int) []annotatedLine {
	var head []byte
	if v < 24 {
		head = []byte{majorSimple | byte(v)}
	} else {
		head = []byte{majorSimple | 24, byte(v)}
	}

	var name string
	switch {
	case v == SimpleFalse:
		name = "false, "
	case v == SimpleTrue:
		name = "true, "
	case v == SimpleNull:
		name = "null, "
	case v == SimpleUndefined:
		name = "undefined, "
	case v >= 24 && v <= 31:
		name = "reserved, "
	default:
		name = "unassigned, "
	}

	return []annotatedLine{{hex: hexEncodeSpaced(head), comment: fmt.Sprintf("%ssimple(%d)", name, v), indent: indent}}
}
