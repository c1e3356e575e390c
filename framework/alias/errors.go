package alias

import (
	"errors"
	"fmt"
)

// ErrInvalidAlias is matched by every *InvalidAliasError via errors.Is.
var ErrInvalidAlias = errors.New("invalid path alias")

// InvalidAliasError reports an alias that has no registered root.
type InvalidAliasError struct {
	Alias string
}

func (e *InvalidAliasError) Error() string {
	return fmt.Sprintf("Invalid path alias: %s", e.Alias)
}

func (e *InvalidAliasError) Is(target error) bool {
	return target == ErrInvalidAlias
}
