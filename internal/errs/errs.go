// Package errs holds the error kinds that abort an analysis run.
package errs

import (
	"fmt"

	"go.uber.org/multierr"
)

// IOError reports a failed fetch, read or write of a dataset or model file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigError reports an invalid split boundary, grid or setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func Config(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataQualityError carries every issue found in one validation pass.
type DataQualityError struct {
	Issues error
}

func (e *DataQualityError) Error() string {
	issues := multierr.Errors(e.Issues)
	if len(issues) == 1 {
		return "data quality: " + issues[0].Error()
	}
	return fmt.Sprintf("data quality: %d issues: %v", len(issues), e.Issues)
}

func (e *DataQualityError) Unwrap() []error { return multierr.Errors(e.Issues) }

// Count returns how many issues were collected.
func (e *DataQualityError) Count() int { return len(multierr.Errors(e.Issues)) }

func DataQuality(format string, args ...any) *DataQualityError {
	return &DataQualityError{Issues: fmt.Errorf(format, args...)}
}
