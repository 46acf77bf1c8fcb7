package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestToStringList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  Value
		expect []string
	}{
		{
			name:   "null",
			input:  Value{},
			expect: []string{},
		},
		{
			name:   "string list is trimmed and empties dropped",
			input:  Strings("  Promoter ", "", "   ", "Runner"),
			expect: []string{"Promoter", "Runner"},
		},
		{
			name:   "plain string is split on separators",
			input:  String("English, Malay;Mandarin\nTamil"),
			expect: []string{"English", "Malay", "Mandarin", "Tamil"},
		},
		{
			name:   "json array string is decoded",
			input:  String(`["Sales", " Runner "]`),
			expect: []string{"Sales", "Runner"},
		},
		{
			name:   "broken json array falls back to splitting",
			input:  String(`[Sales, Runner`),
			expect: []string{"[Sales", "Runner"},
		},
		{
			name:   "empty string",
			input:  String("   "),
			expect: []string{},
		},
		{
			name: "work records",
			input: Records(
				map[string]any{"title": "Promoter", "company": "Celcom", "duration": "2 months"},
				map[string]any{"title": "Runner"},
				map[string]any{"Title": "Supervisor", "company": "Nando"},
			),
			expect: []string{"Promoter at Celcom (2 months)", "Runner", "Supervisor at Nando"},
		},
		{
			name: "education records",
			input: Records(
				map[string]any{"degree": "Diploma in Business", "institution": "UiTM", "year": float64(2019)},
				map[string]any{"institution": "SMK Taman Desa"},
			),
			expect: []string{"Diploma in Business at UiTM (2019)", "SMK Taman Desa"},
		},
		{
			name:   "unknown record shape renders as sorted json",
			input:  Records(map[string]any{"b": "2", "a": "1"}),
			expect: []string{`{"a":"1","b":"2"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ToStringList(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %#v, got %#v", tt.expect, got)
			}
		})
	}
}

func TestToStringListIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []Value{
		Strings("Mystery Shopper at Celcom", "Mystery Shopper at Nando"),
		String("English, Malay"),
		Records(map[string]any{"title": "Promoter", "company": "Celcom"}),
	}

	for _, in := range inputs {
		once := ToStringList(in)
		twice := ToStringList(Strings(once...))
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent: %#v then %#v", once, twice)
		}
	}
}

func TestFromAnyDecodedJSON(t *testing.T) {
	t.Parallel()

	var doc map[string]any
	raw := `{
		"skills": ["Go", "SQL"],
		"experience": [{"title": "Promoter", "company": "Celcom"}],
		"mixed": ["Runner", {"title": "Emcee"}, 3],
		"text": "a, b",
		"number": 42
	}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	cases := map[string]Kind{
		"skills":     KindStringList,
		"experience": KindRecordList,
		"mixed":      KindStringList,
		"text":       KindString,
		"number":     KindNull,
		"missing":    KindNull,
	}
	for key, kind := range cases {
		if got := FromAny(doc[key]).Kind; got != kind {
			t.Fatalf("%s: expected kind %s, got %s", key, kind, got)
		}
	}

	mixed := ToStringListAny(doc["mixed"])
	if !reflect.DeepEqual(mixed, []string{"Runner", "Emcee", "3"}) {
		t.Fatalf("unexpected mixed rendering: %#v", mixed)
	}
}
