package artifact

import "errors"

// Artifact load and transform errors.
var (
	ErrInvalidArtifact   = errors.New("invalid artifact")
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
	ErrFormulaMismatch   = errors.New("interaction formula disagrees with encoder")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownColumn     = errors.New("unknown column")
)
