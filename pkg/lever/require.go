package lever

import (
	"fmt"
)

// Error tagged guard failure
type Error struct {
	Tag string
}

func (e *Error) Error() string {
	return fmt.Sprintf("require: %s", e.Tag)
}

// Require returns a tagged error when the condition does not hold
func Require(condition bool, tag string) error {
	if condition {
		return nil
	}

	return &Error{Tag: tag}
}
