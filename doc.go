// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

/*
Package cbordiag converts CBOR (RFC 8949) between four surface forms: raw
binary, lowercase hexadecimal, diagnostic notation (EDN), and annotated hex
(a commented hex dump showing major-type/length framing alongside decoded
content).

Unlike a typical CBOR library, cbordiag does not decode into Go types via
reflection. Instead every decode produces a DataItem, a tree that preserves
every encoding choice a logical-value model would normally discard: the
bit-width chosen for each integer header, the chunk boundaries of
indefinite-length strings, the base encoding selected for byte strings under
tags 21/22/23, and the half/single/double precision used for floats. Two
DataItems compare equal (via Equal) iff their binary encodings are
byte-identical.

Basics

	item, err := cbordiag.ParseBytes(data)
	item, err := cbordiag.ParseHex("17 # unsigned(23)")
	item, err := cbordiag.ParseDiag(`{1: "a", 2: [_ h'ab', h'cd']}`)

	data := cbordiag.ToBytes(item)
	hexDump := cbordiag.AnnotatedHex(item)
	diag := cbordiag.CompactDiag(item) // single line
	diag = cbordiag.PrettyDiag(item)   // indented, styled

Diagnostic rendering is produced through an abstract styled-output sink
(Sink); AnsiSink emits SGR color codes, PlainSink drops all styling. Both
implement the same interface so callers can gate on a "color: auto/always/
never" flag the way cmd/cbordiag does.

For a stream of concatenated top-level items (RFC 8742 CBOR Sequences),
SequenceDecoder reads items one at a time from an io.Reader without
requiring the whole stream in memory first:

	dec := cbordiag.NewSequenceDecoder(r)
	for {
		item, err := dec.Next()
		if errors.Is(err, cbordiag.ErrEmptySequence) {
			break
		}
		if err != nil {
			return err
		}
		// use item
	}

The cbordiag command in cmd/cbordiag wraps this package as a CLI, converting
between the four forms with --from/--to flags and an optional --seq mode.

cbordiag does not attempt schema validation, conversion to other
serialization formats, or CBOR canonicalization — the preserving data model
is deliberately the opposite of canonical form.
*/
package cbordiag
