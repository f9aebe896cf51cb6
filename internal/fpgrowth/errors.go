package fpgrowth

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions matches every *ConfigError via errors.Is.
var ErrInvalidOptions = errors.New("invalid mining options")

// ConfigError reports a mining option outside its allowed range.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid mining option %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidOptions) true.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidOptions
}
