package model

import (
	"errors"
)

var (
	ErrNoProofsRoot  = errors.New("proofs root directory is not set")
	ErrNoCSVPath     = errors.New("csv output path is not set")
	ErrBadIterations = errors.New("iterations must be at least 1")
	ErrBadParallel   = errors.New("parallel must be at least 1")
	ErrNoMarker      = errors.New("marker file name is not set")
	ErrNoMakeTarget  = errors.New("make binary and target must be set")
)
