// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cdr

import "go.e43.eu/cdr/internal/errors"

// Errors returned by this package may be matched against these with errors.Is
const (
	ErrSizeLimitExceeded              = errors.ErrSizeLimitExceeded
	ErrInvalidBoolEncoding            = errors.ErrInvalidBoolEncoding
	ErrInvalidCharEncoding            = errors.ErrInvalidCharEncoding
	ErrInvalidUTF8Encoding            = errors.ErrInvalidUTF8Encoding
	ErrInvalidEncapsulation           = errors.ErrInvalidEncapsulation
	ErrTypeNotSupported               = errors.ErrTypeNotSupported
	ErrSchemaLessDecodingNotSupported = errors.ErrSchemaLessDecodingNotSupported
	ErrUnknownVariant                 = errors.ErrUnknownVariant
	ErrLengthExceedsMax               = errors.ErrLengthExceedsMax
	ErrLengthExceedsPlatformLimit     = errors.ErrLengthExceedsPlatformLimit
	ErrNotPointer                     = errors.ErrNotPointer
	ErrNilPointer                     = errors.ErrNilPointer
)

// Structured errors, for use with errors.As
type (
	InvalidBoolEncodingError  = errors.InvalidBoolEncodingError
	InvalidUTF8EncodingError  = errors.InvalidUTF8EncodingError
	InvalidEncapsulationError = errors.InvalidEncapsulationError
	UnknownVariantError       = errors.UnknownVariantError
	SizeLimitError            = errors.SizeLimitError
	LengthError               = errors.LengthError
	InvalidTypeError          = errors.InvalidTypeError
	InvalidTagForTypeError    = errors.InvalidTagForTypeError
	FieldError                = errors.FieldError
)
