package runstore

import "errors"

var (
	ErrSealed    = errors.New("run already sealed")
	ErrNotSealed = errors.New("run not sealed")
	ErrDestroyed = errors.New("run store destroyed")
)
