package driftkv

import (
	"fmt"
)

var (
	ErrDirIsUsing = addPrefix("directory is used by another process")
	ErrClosed     = addPrefix("db is closed")

	ErrNoIOManager   = addPrefix("no io manager")
	ErrInvalidConfig = addPrefix("invalid config")
)

func addPrefix(errStr string) error {
	return fmt.Errorf("driftkv err: %s", errStr)
}
