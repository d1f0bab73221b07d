package repl

import "errors"

// Sentinel errors.
var (
	ErrNoPath       = errors.New("no file path to save to")
	ErrEditDeclined = errors.New("decline edit")
)
