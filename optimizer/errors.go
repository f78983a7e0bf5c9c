package optimizer

import "fmt"

// ConfigurationError reports a missing or invalid piece of construction-time
// configuration — Adam and AMSGrad need a BatchSizeSource and refuse to
// build without one rather than silently dividing by one.
type ConfigurationError struct {
	Op  string
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Op, e.Msg)
}

func newConfigurationError(op, msg string) *ConfigurationError {
	return &ConfigurationError{Op: op, Msg: msg}
}
