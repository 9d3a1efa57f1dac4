package macpo

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"

	"github.com/eugenenazirov/hpconf/internal/hyperparams"
)

// optionalKeys may be absent or empty; their fields are pointers and stay nil.
var optionalKeys = map[string]bool{
	"model_dir":         true,
	"num_agents":        true,
	"data_chunk_length": true,
}

// settingKeys is every key Settings consumes, taken from the fields left
// unset when decoding an empty input.
var settingKeys = sync.OnceValue(func() []string {
	var (
		s  Settings
		md mapstructure.Metadata
	)
	if err := decode(map[string]any{}, &s, &md); err != nil {
		panic(fmt.Sprintf("macpo: decode empty settings: %v", err))
	}
	sort.Strings(md.Unset)
	return md.Unset
})

// Keys returns every setting name Settings understands.
func Keys() []string {
	return slices.Clone(settingKeys())
}

// UnknownKeys lists settings present in cfg that Settings does not read, in
// document order.
func UnknownKeys(cfg hyperparams.ResolvedConfig) []string {
	var unknown []string
	for _, key := range cfg.Keys() {
		if !slices.Contains(settingKeys(), key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// Decode builds Settings from cfg and validates them. Every problem is
// reported: absent required keys as one *MissingSettingError, bad values
// as one *InvalidSettingError each.
func Decode(cfg hyperparams.ResolvedConfig) (Settings, error) {
	var errs error
	for _, key := range cfg.Keys() {
		v, _ := cfg.Get(key)
		if v.IsNull() && !optionalKeys[key] && slices.Contains(settingKeys(), key) {
			errs = multierr.Append(errs, &InvalidSettingError{Key: key, Err: errNullValue})
		}
	}

	var (
		s  Settings
		md mapstructure.Metadata
	)
	if err := decode(cfg.Map(), &s, &md); err != nil {
		errs = multierr.Append(errs, invalidSettings(err))
	}

	var missing []string
	for _, key := range md.Unset {
		if !optionalKeys[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = multierr.Append(&MissingSettingError{Keys: missing}, errs)
	}
	if errs != nil {
		return Settings{}, errs
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func decode(input map[string]any, out *Settings, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(rejectFractionalIntegers),
		Metadata:   md,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// rejectFractionalIntegers stops mapstructure from truncating a float literal
// into an integer field.
func rejectFractionalIntegers(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if k := from.Kind(); k == reflect.Float32 || k == reflect.Float64 {
			return nil, fmt.Errorf("expected an integer, got float %v", data)
		}
	}
	return data, nil
}

// invalidSettings splits mapstructure's aggregated error into one
// *InvalidSettingError per key. Each message names the key in quotes.
func invalidSettings(err error) error {
	var msErr *mapstructure.Error
	if !errors.As(err, &msErr) {
		return err
	}

	var errs error
	for _, msg := range msErr.Errors {
		key, reason := splitFieldError(msg)
		errs = multierr.Append(errs, &InvalidSettingError{Key: key, Err: errors.New(reason)})
	}
	return errs
}

// splitFieldError turns "'gamma' expected type ..." or
// "error decoding 'gamma': expected ..." into the key and the reason.
func splitFieldError(msg string) (string, string) {
	_, rest, ok := strings.Cut(msg, "'")
	if !ok {
		return "", msg
	}
	key, reason, ok := strings.Cut(rest, "'")
	if !ok {
		return "", msg
	}
	return key, strings.TrimSpace(strings.TrimPrefix(reason, ":"))
}
