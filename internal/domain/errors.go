package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrUnsupportedVariant = errors.New("variant not supported by wallet")
	ErrNoVariants         = errors.New("wallet declares no variant")
)
