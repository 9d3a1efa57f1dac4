package macpo

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/eugenenazirov/hpconf/internal/hyperparams"
)

func loadDocument(t *testing.T) *hyperparams.Document {
	t.Helper()

	doc, err := hyperparams.Load("testdata/macpo.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return doc
}

func TestDecodeScenarios(t *testing.T) {
	t.Parallel()

	doc := loadDocument(t)

	t.Run("mamujoco", func(t *testing.T) {
		s, err := Decode(doc.Resolve("mamujoco"))
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if s.Policy.HiddenSize != 128 {
			t.Fatalf("expected hidden_size 128, got %d", s.Policy.HiddenSize)
		}
		if s.Algorithm.SafetyBound != 25 {
			t.Fatalf("expected inherited safety_bound 25, got %v", s.Algorithm.SafetyBound)
		}
		if s.Environment.NumAgents != nil {
			t.Fatalf("expected num_agents to be unset, got %d", *s.Environment.NumAgents)
		}
	})

	t.Run("multi_goal", func(t *testing.T) {
		s, err := Decode(doc.Resolve("multi_goal"))
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if s.Environment.NumAgents == nil || *s.Environment.NumAgents != 2 {
			t.Fatalf("expected num_agents 2, got %v", s.Environment.NumAgents)
		}
		if s.Algorithm.Gamma != 0.99 {
			t.Fatalf("expected gamma 0.99, got %v", s.Algorithm.Gamma)
		}
		if s.Algorithm.ActorLR != 9e-5 {
			t.Fatalf("expected inherited actor_lr 9e-5, got %v", s.Algorithm.ActorLR)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := Decode(doc.Defaults())
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if s.Policy.DataChunkLength != nil {
			t.Fatalf("expected empty data_chunk_length to stay unset")
		}
		if s.Algorithm.EPS != 1e-8 || !s.Policy.UseCentralizedV || s.Run.AlgorithmName != "macpo" {
			t.Fatalf("unexpected decoded defaults: %+v", s)
		}
		if s.Policy.StdXCoef != 1 {
			t.Fatalf("expected integer std_x_coef to widen to 1.0, got %v", s.Policy.StdXCoef)
		}
	})
}

func TestDecodeMissingSettings(t *testing.T) {
	t.Parallel()

	cfg, err := hyperparams.Resolve([]byte("gamma: 0.99\nhidden_size: 64\n"), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	_, err = Decode(cfg)
	if !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("expected ErrMissingSetting, got %v", err)
	}

	var missingErr *MissingSettingError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected *MissingSettingError, got %T", err)
	}
	if slices.Contains(missingErr.Keys, "gamma") || slices.Contains(missingErr.Keys, "num_agents") {
		t.Fatalf("unexpected missing keys: %v", missingErr.Keys)
	}
	if !slices.Contains(missingErr.Keys, "actor_lr") || !slices.IsSorted(missingErr.Keys) {
		t.Fatalf("expected sorted missing keys including actor_lr, got %v", missingErr.Keys)
	}
}

func TestDecodeInvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		literal string
		message string
	}{
		{name: "FloatForInteger", key: "hidden_size", literal: "64.5", message: "expected an integer"},
		{name: "StringForFloat", key: "actor_lr", literal: "fast", message: "unconvertible type"},
		{name: "BoolForFloat", key: "gamma", literal: "True", message: "unconvertible type"},
		{name: "StringForInteger", key: "seed", literal: "'1'", message: "unconvertible type"},
		{name: "NullRequired", key: "gamma", literal: "", message: "must not be empty"},
		{name: "DiscountOutOfRange", key: "gamma", literal: "1.5", message: "outside [0, 1]"},
		{name: "NegativeLearningRate", key: "critic_lr", literal: "-1.e-3", message: "must be positive"},
		{name: "ZeroChunkLength", key: "data_chunk_length", literal: "0", message: "must be positive when set"},
	}

	doc := loadDocument(t)
	base, err := hyperparams.Marshal(doc.Defaults())
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := string(base) + "broken:\n  " + tc.key + ": " + tc.literal + "\n"
			cfg, err := hyperparams.Resolve([]byte(input), "broken")
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}

			_, err = Decode(cfg)
			if !errors.Is(err, ErrInvalidSetting) {
				t.Fatalf("expected ErrInvalidSetting, got %v", err)
			}

			var invalid *InvalidSettingError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidSettingError, got %T", err)
			}
			if invalid.Key != tc.key || !strings.Contains(invalid.Error(), tc.message) {
				t.Fatalf("unexpected error for %s: %v", tc.key, invalid)
			}
		})
	}
}

func TestDecodeReportsEveryInvalidSetting(t *testing.T) {
	t.Parallel()

	doc := loadDocument(t)
	base, err := hyperparams.Marshal(doc.Defaults())
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	input := string(base) + "broken:\n  hidden_size: 64.5\n  gamma: fast\n  use_eval: 1\n"
	cfg, err := hyperparams.Resolve([]byte(input), "broken")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	_, err = Decode(cfg)
	var keys []string
	for _, e := range multierr.Errors(err) {
		var invalid *InvalidSettingError
		if !errors.As(e, &invalid) {
			t.Fatalf("expected *InvalidSettingError, got %T: %v", e, e)
		}
		keys = append(keys, invalid.Key)
	}
	slices.Sort(keys)
	if want := []string{"gamma", "hidden_size", "use_eval"}; !slices.Equal(keys, want) {
		t.Fatalf("expected invalid keys %v, got %v", want, keys)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	t.Parallel()

	s, err := Decode(loadDocument(t).Defaults())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	s.Algorithm.Gamma = 2
	s.Algorithm.KLThreshold = 0
	s.Policy.HiddenSize = 0

	errs := multierr.Errors(s.Validate())
	if len(errs) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(errs), errs)
	}
}

func TestKeysCoverDocument(t *testing.T) {
	t.Parallel()

	doc := loadDocument(t)
	if unknown := UnknownKeys(doc.Resolve("multi_goal")); len(unknown) != 0 {
		t.Fatalf("expected every document key to be understood, got unknown %v", unknown)
	}

	cfg, err := hyperparams.Resolve([]byte("gamma: 0.9\nnew_knob: 3\n"), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if unknown := UnknownKeys(cfg); !slices.Equal(unknown, []string{"new_knob"}) {
		t.Fatalf("expected [new_knob], got %v", unknown)
	}

	keys := Keys()
	if !slices.Contains(keys, "EPS") || !slices.Contains(keys, "data_chunk_length") {
		t.Fatalf("expected Keys to include grouped fields")
	}
	if slices.Contains(keys, "run") || slices.Contains(keys, "Policy") {
		t.Fatalf("group names must not be reported as keys: %v", keys)
	}
	if got := len(keys); got != 70 {
		t.Fatalf("expected 70 keys, got %d", got)
	}
}
