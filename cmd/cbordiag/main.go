// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Command cbordiag is a thin CLI wrapper around the cbordiag library,
// shipped mainly as an integration-test harness for the conversions the
// library exposes: binary, hex, diagnostic notation, and annotated hex.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cbordiag/cbordiag"
)

var (
	fromFlag  string
	toFlag    string
	colorFlag string
	seqFlag   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatalf("cbordiag: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cbordiag",
		Short:         "Convert between CBOR binary, hex, diagnostic, and annotated-hex forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVar(&fromFlag, "from", "auto", `input format: "auto", "hex", "bytes", or "diag"`)
	cmd.Flags().StringVar(&toFlag, "to", "diag", `output format: "annotated", "hex", "bytes", "diag", or "compact"`)
	cmd.Flags().StringVar(&colorFlag, "color", "auto", `colorize diagnostic output: "auto", "always", or "never"`)
	cmd.Flags().BoolVar(&seqFlag, "seq", false, "read a binary CBOR sequence from stdin until EOF (mutually exclusive with --from)")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	if seqFlag && cmd.Flags().Changed("from") {
		return errors.New("--seq is mutually exclusive with --from")
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	sink := newSink(cmd.OutOrStdout())

	if seqFlag {
		return runSequence(input, sink, cmd.OutOrStdout())
	}

	item, err := parseInput(input, fromFlag)
	if err != nil {
		return err
	}
	return writeOutput(sink, cmd.OutOrStdout(), item)
}

// parseInput dispatches on --from, implementing auto-detection (spec §6):
// try binary first, then hex if the input is valid UTF-8, then diagnostic.
func parseInput(input []byte, from string) (cbordiag.DataItem, error) {
	switch from {
	case "bytes":
		return cbordiag.ParseBytes(input)
	case "hex":
		return cbordiag.ParseHex(string(input))
	case "diag":
		return cbordiag.ParseDiag(string(input))
	case "auto":
		return parseAuto(input)
	default:
		return nil, fmt.Errorf("unknown --from value %q", from)
	}
}

func parseAuto(input []byte) (cbordiag.DataItem, error) {
	if item, err := cbordiag.ParseBytes(input); err == nil {
		return item, nil
	}
	if utf8.Valid(input) {
		if item, err := cbordiag.ParseHex(string(input)); err == nil {
			return item, nil
		}
	}
	item, err := cbordiag.ParseDiag(string(input))
	if err != nil {
		return nil, fmt.Errorf("could not parse input as bytes, hex, or diagnostic notation: %w", err)
	}
	return item, nil
}

func writeOutput(sink cbordiag.Sink, w io.Writer, item cbordiag.DataItem) error {
	switch toFlag {
	case "bytes":
		_, err := w.Write(cbordiag.ToBytes(item))
		return err
	case "hex":
		_, err := fmt.Fprintf(w, "%x\n", cbordiag.ToBytes(item))
		return err
	case "annotated":
		_, err := io.WriteString(w, cbordiag.AnnotatedHex(item)+"\n")
		return err
	case "compact":
		if err := cbordiag.WriteCompactDiag(sink, item); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case "diag":
		if err := cbordiag.WriteDiag(sink, item, cbordiag.Pretty); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	default:
		return fmt.Errorf("unknown --to value %q", toFlag)
	}
}

// newSink chooses an ANSI or plain Sink per --color, gating "auto" on
// whether stdout is a terminal via mattn/go-isatty the way the pack's CLI
// color stacks do.
func newSink(w io.Writer) cbordiag.Sink {
	switch colorFlag {
	case "always":
		return cbordiag.NewAnsiSink(w)
	case "never":
		return cbordiag.NewPlainSink(w)
	default:
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return cbordiag.NewAnsiSink(w)
		}
		return cbordiag.NewPlainSink(w)
	}
}

// runSequence implements --seq: read the whole of stdin as a concatenated
// CBOR sequence (RFC 8742), converting and printing each item in turn.
// Leftover undecodable trailing bytes are a nonzero-exit error (spec §6).
func runSequence(input []byte, sink cbordiag.Sink, w io.Writer) error {
	dec := cbordiag.NewSequenceDecoder(bytes.NewReader(input))
	for {
		item, err := dec.Next()
		if err != nil {
			if errors.Is(err, cbordiag.ErrEmptySequence) {
				return nil
			}
			return err
		}
		if err := writeOutput(sink, w, item); err != nil {
			return err
		}
	}
}
