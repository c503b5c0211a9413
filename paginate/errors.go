package paginate

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for any invalid pagination argument.
	ErrConfiguration = errors.New("invalid pagination configuration")

	// ErrInvalidPage is returned when the page number is not positive.
	ErrInvalidPage = errors.New("page must be positive")

	// ErrInvalidSize is returned when the page size is not positive.
	ErrInvalidSize = errors.New("size must be positive")
)

// ConfigError reports an invalid pagination argument with its value.
type ConfigError struct {
	Field string
	Value int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%d: %s", ErrConfiguration, e.Field, e.Value, e.Err)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration || target == e.Err
}
