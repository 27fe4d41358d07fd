// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"io"
)

// bytesReader streams the body of a byte buffer. CDR byte buffers carry no
// trailing padding, so closing only has to discard what was left unread
type bytesReader struct {
	lr io.LimitedReader
}

func newBytesReader(r io.Reader, len int64) *bytesReader {
	return &bytesReader{
		lr: io.LimitedReader{
			R: r,
			N: len,
		},
	}
}

func (b *bytesReader) Read(p []byte) (int, error) {
	return b.lr.Read(p)
}

func (b *bytesReader) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, &b.lr)
}

func (b *bytesReader) Close() error {
	want := b.lr.N
	n, err := io.Copy(io.Discard, &b.lr)
	if err == nil && n != want {
		err = io.ErrUnexpectedEOF
	}
	return err
}

var _ io.Reader = &bytesReader{}
var _ io.ReadCloser = &bytesReader{}
var _ io.WriterTo = &bytesReader{}
