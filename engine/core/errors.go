package core

import (
	"errors"
)

var (
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrUnsupportedContext = errors.New("unsupported graphics context version")
	ErrPlatform           = errors.New("platform failure")
	ErrNotInitialized     = errors.New("not initialized")
	ErrUnknown            = errors.New("unknown")
)
