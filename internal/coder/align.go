// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
)

// 8 byte array which will always contain zeroes that we use whenever
// we need to emit padding
var pad [8]byte

// padding returns the number of bytes needed to bring pos up to a multiple
// of width. width is always one of 1, 2, 4 or 8
func padding(pos, width uint64) uint64 {
	return (width - (pos & (width - 1))) & (width - 1)
}

// sizeCounter accumulates the bytes an operation has produced or consumed,
// failing as soon as a bounded limit is passed
type sizeCounter struct {
	max     uint64
	bounded bool
	total   uint64
}

func (c *sizeCounter) reset(limit cdrinterfaces.SizeLimit) {
	c.max, c.bounded = limit.Max()
	c.total = 0
}

func (c *sizeCounter) add(n uint64) error {
	c.total += n
	if c.bounded && c.total > c.max {
		return errors.SizeLimitError{Size: c.total, Max: c.max}
	}
	return nil
}
