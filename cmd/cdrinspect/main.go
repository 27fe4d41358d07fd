// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// cdrinspect prints the encapsulation header of a serialized CDR frame and,
// optionally, a hex dump of its payload. The payload itself can not be
// interpreted, as CDR carries no type information.
//
// The frame is read from the named file, or from standard input if none is given.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"go.e43.eu/cdr"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	dump    bool
	limit   uint64
	verbose bool
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("cdrinspect", pflag.ContinueOnError)
	flagSet.BoolVarP(&opts.dump, "dump", "d", false, "print a hex dump of the payload")
	flagSet.Uint64Var(&opts.limit, "limit", 0, "reject frames longer than this many bytes (0 for no limit)")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug records to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
		cdr.SetLogger(logger)
		defer cdr.SetLogger(nil)
	}

	in := stdin
	name := "<stdin>"
	switch rest := flagSet.Args(); len(rest) {
	case 0:
	case 1:
		name = rest[0]
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}

	frame, err := readFrame(in, opts.limit)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return inspect(stdout, name, frame, opts)
}

// readFrame reads all of r, failing if there are more than limit bytes.
// Limits which no reader could reach are treated as no limit
func readFrame(r io.Reader, limit uint64) ([]byte, error) {
	if limit == 0 || limit >= math.MaxInt64 {
		return io.ReadAll(r)
	}

	frame, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(frame)) > limit {
		return nil, cdr.SizeLimitError{Size: uint64(len(frame)), Max: limit}
	}
	return frame, nil
}

func inspect(w io.Writer, name string, frame []byte, opts options) error {
	format, err := cdr.ReadHeader(bytes.NewReader(frame))
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%s: frame shorter than the encapsulation header (%d bytes)", name, len(frame))
	case err != nil:
		return fmt.Errorf("%s: %w", name, err)
	}

	payload := frame[4:]
	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  format:     %s (0x%04x)\n", format, format.ID())
	fmt.Fprintf(w, "  endianness: %s\n", format.Endianness())
	fmt.Fprintf(w, "  options:    0x%02x%02x\n", frame[2], frame[3])
	fmt.Fprintf(w, "  payload:    %d bytes\n", len(payload))

	if opts.dump && len(payload) != 0 {
		fmt.Fprintf(w, "\n%s", hex.Dump(payload))
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `cdrinspect - show the encapsulation header of a CDR frame.

Usage:
  cdrinspect [flags] [file]

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
