package macpo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSetting is matched by a *MissingSettingError.
	ErrMissingSetting = errors.New("required setting missing")
	// ErrInvalidSetting is matched by every *InvalidSettingError.
	ErrInvalidSetting = errors.New("invalid setting")

	errNullValue = errors.New("value must not be empty")
)

// MissingSettingError lists required keys the resolved config does not declare.
type MissingSettingError struct {
	Keys []string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingSetting, strings.Join(e.Keys, ", "))
}

func (e *MissingSettingError) Unwrap() error {
	return ErrMissingSetting
}

// InvalidSettingError reports a key whose value has the wrong type or range.
type InvalidSettingError struct {
	Key string
	Err error
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidSetting, e.Key, e.Err)
}

func (e *InvalidSettingError) Unwrap() []error {
	return []error{ErrInvalidSetting, e.Err}
}
