package hyperparams

import (
	"math"
	"strings"
	"testing"
)

func TestResolveConcreteScenarios(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)

	tests := []struct {
		scenario string
		key      string
		want     Value
	}{
		{scenario: "mamujoco", key: "hidden_size", want: IntValue(128)},
		{scenario: "mamujoco", key: "safety_bound", want: IntValue(25)},
		{scenario: "mamujoco", key: "episode_length", want: IntValue(1000)},
		{scenario: "mamujoco", key: "use_popart", want: BoolValue(false)},
		{scenario: "multi_goal", key: "num_agents", want: IntValue(2)},
		{scenario: "multi_goal", key: "gamma", want: FloatValue(0.99)},
		{scenario: "multi_goal", key: "actor_lr", want: FloatValue(9e-5)},
		{scenario: "multi_goal", key: "data_chunk_length", want: Null()},
		{scenario: "", key: "hidden_size", want: IntValue(512)},
		{scenario: "", key: "gamma", want: FloatValue(0.96)},
	}

	for _, tc := range tests {
		t.Run(tc.scenario+"/"+tc.key, func(t *testing.T) {
			got, ok := doc.Resolve(tc.scenario).Get(tc.key)
			if !ok {
				t.Fatalf("expected key %s to be resolved", tc.key)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s=%s, got %s", tc.key, tc.want, got)
			}
		})
	}
}

func TestResolveMergeProperties(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)
	defaults := doc.Defaults()

	for _, scenario := range doc.Scenarios() {
		t.Run(scenario, func(t *testing.T) {
			resolved := doc.Resolve(scenario)
			block, _ := doc.Override(scenario)

			if resolved.Scenario() != scenario {
				t.Fatalf("expected applied scenario %s, got %q", scenario, resolved.Scenario())
			}

			for _, key := range block.Keys() {
				want, _ := block.Get(key)
				got, _ := resolved.Get(key)
				if !got.Equal(want) {
					t.Fatalf("override %s: expected %s, got %s", key, want, got)
				}
			}

			for _, key := range defaults.Keys() {
				if block.Has(key) {
					continue
				}
				want, _ := defaults.Get(key)
				got, ok := resolved.Get(key)
				if !ok || !got.Equal(want) {
					t.Fatalf("inherited %s: expected %s, got %s", key, want, got)
				}
			}

			for _, key := range resolved.Keys() {
				if !block.Has(key) && !defaults.Has(key) {
					t.Fatalf("resolved config holds unknown key %s", key)
				}
			}
		})
	}
}

func TestResolveWithoutScenarioReturnsDefaults(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)
	defaults := doc.Defaults()

	for _, scenario := range []string{"", "nonexistent_scenario"} {
		got := doc.Resolve(scenario)
		if !got.Equal(defaults) {
			t.Fatalf("Resolve(%q) differs from defaults", scenario)
		}
		if got.Scenario() != "" {
			t.Fatalf("Resolve(%q) reported applied scenario %q", scenario, got.Scenario())
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)

	first := doc.Resolve("mamujoco")
	second := doc.Resolve("mamujoco")
	if !first.Equal(second) {
		t.Fatalf("repeated resolution produced different configs")
	}
	if doc.Defaults().Equal(first) {
		t.Fatalf("expected mamujoco to differ from defaults")
	}
}

func TestResolveOverrideWinsAcrossTypes(t *testing.T) {
	t.Parallel()

	input := "data_chunk_length:\nhidden_size: 64\nuse_gae: True\nmamujoco:\n  data_chunk_length: 10\n  hidden_size:\n  use_gae: off-policy\n"
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	cfg := doc.Resolve("mamujoco")
	if got, _ := cfg.Int("data_chunk_length"); got != 10 {
		t.Fatalf("expected data_chunk_length 10, got %d", got)
	}
	if v, _ := cfg.Get("hidden_size"); !v.IsNull() {
		t.Fatalf("expected null override to win, got %s", v)
	}
	if got, _ := cfg.Str("use_gae"); got != "off-policy" {
		t.Fatalf("expected string override to win, got %q", got)
	}
}

func TestResolveDoesNotShareState(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)

	keys := doc.Resolve("mamujoco").Keys()
	keys[0] = "mutated"
	if doc.Defaults().Has("mutated") || doc.Resolve("mamujoco").Has("mutated") {
		t.Fatalf("mutating returned keys leaked into the document")
	}
}

func TestResolvedConfigMarshalJSON(t *testing.T) {
	t.Parallel()

	cfg := newResolvedConfig("", []string{"b", "a", "c", "d", "e", "f"}, map[string]Value{
		"a": Null(),
		"b": IntValue(1),
		"c": FloatValue(0.5),
		"d": StringValue("macpo"),
		"e": BoolValue(true),
		"f": FloatValue(math.Inf(1)),
	})

	got, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	want := `{"b":1,"a":null,"c":0.5,"d":"macpo","e":true,"f":".inf"}`
	if string(got) != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)

	for _, scenario := range append([]string{""}, doc.Scenarios()...) {
		t.Run("scenario="+scenario, func(t *testing.T) {
			cfg := doc.Resolve(scenario)

			out, err := Marshal(cfg)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			reparsed, err := Resolve(out, "")
			if err != nil {
				t.Fatalf("re-parsing marshaled config failed: %v\n%s", err, out)
			}
			if !reparsed.Equal(cfg) {
				t.Fatalf("round trip changed the config:\n%s", out)
			}
		})
	}
}

func TestMarshalPreservesEdgeValues(t *testing.T) {
	t.Parallel()

	values := map[string]Value{
		"eps":        FloatValue(1e-8),
		"whole":      FloatValue(5),
		"negzero":    FloatValue(math.Copysign(0, -1)),
		"huge":       FloatValue(1e300),
		"tiny":       FloatValue(5e-324),
		"third":      FloatValue(1.0 / 3.0),
		"nan":        FloatValue(math.NaN()),
		"neginf":     FloatValue(math.Inf(-1)),
		"bigint":     IntValue(math.MaxInt64),
		"empty":      Null(),
		"boolish":    StringValue("True"),
		"numberish":  StringValue("1.e-8"),
		"blank":      StringValue(""),
		"nullish":    StringValue("null"),
		"datelike":   StringValue("2023-06-01"),
		"with_colon": StringValue("a: b"),
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	cfg := newResolvedConfig("", keys, values)

	out, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	reparsed, err := Resolve(out, "")
	if err != nil {
		t.Fatalf("re-parsing failed: %v\n%s", err, out)
	}

	for key, want := range values {
		got, ok := reparsed.Get(key)
		if !ok {
			t.Fatalf("key %s lost in round trip", key)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: expected %s (%s), got %s (%s)\n%s", key, want, want.Kind(), got, got.Kind(), out)
		}
	}
}

func TestDocumentMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t)

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(out), "\nmamujoco:\n  ") {
		t.Fatalf("expected indented scenario block, got:\n%s", out)
	}

	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for _, scenario := range append([]string{""}, doc.Scenarios()...) {
		if !reparsed.Resolve(scenario).Equal(doc.Resolve(scenario)) {
			t.Fatalf("scenario %q changed after document round trip", scenario)
		}
	}
}
