package timeline

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigError via errors.Is.
var ErrConfiguration = errors.New("timeline: invalid configuration")

// ConfigError reports a precondition that makes a session impossible to run:
// a malformed reference series, an unusable frame duration or an invalid
// segment list. It is fatal and never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("timeline: %s", e.Reason)
	}
	return fmt.Sprintf("timeline: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
