package experience

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []string
		entries []string
		tags    []string
	}{
		{
			name:    "multi employer line",
			input:   []string{"Mystery Shopper - Celcom, Nando, Petrol Station"},
			entries: []string{"Mystery Shopper at Celcom", "Mystery Shopper at Nando", "Mystery Shopper at Petrol Station"},
			tags:    []string{"Mystery Shopper"},
		},
		{
			name:    "colon separator and trailing period",
			input:   []string{"Promoter: Samsung, Vivo."},
			entries: []string{"Promoter at Samsung", "Promoter at Vivo"},
			tags:    []string{"Promoter"},
		},
		{
			name:    "single employer passes through",
			input:   []string{"Runner - Pavilion KL"},
			entries: []string{"Runner - Pavilion KL"},
			tags:    []string{"Runner"},
		},
		{
			name:    "free text keeps tagging",
			input:   []string{"Worked as emcee for corporate dinners", "Team leader for roadshow, 3 days"},
			entries: []string{"Worked as emcee for corporate dinners", "Team leader for roadshow, 3 days"},
			tags:    []string{"Emcee/MC", "Supervisor/Team Leader"},
		},
		{
			name: "tags deduplicated in first detection order",
			input: []string{
				"Sales Promoter - Watsons, Guardian",
				"Promoter at Aeon",
				"Customer service counter",
			},
			entries: []string{"Sales Promoter at Watsons", "Sales Promoter at Guardian", "Promoter at Aeon", "Customer service counter"},
			tags:    []string{"Promoter", "Sales", "Customer Service"},
		},
		{
			name:    "long sentence with dash is not a role",
			input:   []string{"I helped at many different events in the city - Sunway, Mid Valley"},
			entries: []string{"I helped at many different events in the city - Sunway, Mid Valley"},
			tags:    []string{},
		},
		{
			name:    "date range is not a role",
			input:   []string{"2020 - 2021 Runner, Sunway Pyramid", "Jan 2022 - Mar 2022 Promoter at Watsons"},
			entries: []string{"2020 - 2021 Runner, Sunway Pyramid", "Jan 2022 - Mar 2022 Promoter at Watsons"},
			tags:    []string{"Runner", "Promoter"},
		},
		{
			name:    "employer label is not a role",
			input:   []string{"Company: Watsons, Kuala Lumpur Promoter", "Employer - Guardian, Penang Sales assistant"},
			entries: []string{"Company: Watsons, Kuala Lumpur Promoter", "Employer - Guardian, Penang Sales assistant"},
			tags:    []string{"Promoter", "Sales"},
		},
		{
			name:    "tags come from the employer list too",
			input:   []string{"Usher - Karnival Jualan Mega, Runner crew"},
			entries: []string{"Usher at Karnival Jualan Mega", "Usher at Runner crew"},
			tags:    []string{"Runner"},
		},
		{
			name:    "empty input",
			input:   nil,
			entries: []string{},
			tags:    []string{},
		},
		{
			name:    "duplicates and blanks dropped",
			input:   []string{" Event setup crew ", "", "Event setup crew"},
			entries: []string{"Event setup crew"},
			tags:    []string{"Event Setup"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Segment(tt.input)
			if !reflect.DeepEqual(got.Entries, tt.entries) {
				t.Fatalf("entries: expected %#v, got %#v", tt.entries, got.Entries)
			}
			if !reflect.DeepEqual(got.Tags, tt.tags) {
				t.Fatalf("tags: expected %#v, got %#v", tt.tags, got.Tags)
			}
		})
	}
}

func TestSegmentIsStableOnItsOutput(t *testing.T) {
	t.Parallel()

	first := Segment([]string{"Mystery Shopper - Celcom, Nando, Petrol Station"})
	second := Segment(first.Entries)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected segmenting twice to be stable, got %#v then %#v", first, second)
	}
}
