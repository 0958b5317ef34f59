package grid

import (
	"errors"
)

var (
	ErrBusNotFound      = errors.New("bus not found")
	ErrDuplicateBus     = errors.New("bus already exists")
	ErrElementNotFound  = errors.New("element not found")
	ErrDuplicateElement = errors.New("element already exists")
	ErrUnknownComponent = errors.New("unknown component type")
	ErrTerminalCount    = errors.New("wrong number of terminals")
	ErrTerminalIndex    = errors.New("terminal index out of range")
	ErrSnapshotMismatch = errors.New("result rows do not match snapshots")
)
