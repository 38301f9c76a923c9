package domain

import "github.com/cockroachdb/errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingReference  = errors.New("missing booking reference")
	ErrReceiptNotLoaded  = errors.New("receipt not loaded")
	ErrUnexpectedPayload = errors.New("unexpected payload")
)
