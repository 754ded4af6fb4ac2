package loadable

import (
	lerrors "github.com/vango-dev/loadable/internal/errors"
)

// Configuration errors returned by New and NewMap. Compare with errors.Is.
var (
	ErrLoadingRequired = lerrors.New("L001")
	ErrRenderRequired  = lerrors.New("L002")
	ErrLoaderRequired  = lerrors.New("L003")
)

// ErrLoaderPanic matches load errors produced from a recovered loader panic.
var ErrLoaderPanic = lerrors.New("L020")

// ErrUnknownName matches errors about preload names nobody registered.
var ErrUnknownName = lerrors.New("L041")
