package nt

import "errors"

// ErrInvalidInput is returned when no result exists for the given operands
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidCertificate is returned when a primality certificate fails verification
var ErrInvalidCertificate = errors.New("invalid certificate")

// ErrRandomSource is returned when the random source fails to deliver bits
var ErrRandomSource = errors.New("random source failed")
