package cli

import (
	"errors"
	"fmt"
)

// ConfigError reports a configuration problem: an unreadable config
// file or an invalid field value. Commands exit with code 2 on it.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// UsageError reports invalid command-line usage, such as missing or
// mutually exclusive flags. Commands exit with code 2 on it.
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s: %s", e.Command, e.Message)
}

// CommandError represents a failure inside a command run. Commands
// exit with code 1 on it.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewUsageError creates a new UsageError.
func NewUsageError(command, message string) *UsageError {
	return &UsageError{
		Command: command,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error to the process exit code: 0 for nil, 2 for
// configuration and usage errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var configErr *ConfigError
	var usageErr *UsageError
	if errors.As(err, &configErr) || errors.As(err, &usageErr) {
		return 2
	}
	return 1
}
