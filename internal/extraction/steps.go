package extraction

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/spigell/profile-drafter/internal/experience"
	"github.com/spigell/profile-drafter/internal/icnumber"
	"github.com/spigell/profile-drafter/internal/pattern"
	"github.com/spigell/profile-drafter/internal/profile"
)

// Step summarises what one reconcile step did to the draft.
type Step struct {
	Changed  []string
	Warnings []string
}

type reconcileStep interface {
	Name() string
	Apply(s *state) Step
}

// state is shared by the steps of one reconcile pass.
type state struct {
	draft *profile.Draft
	ic    icnumber.Result
}

func defaultSteps() []reconcileStep {
	return []reconcileStep{
		experienceStep{},
		dateOfBirthStep{},
		icNumberStep{},
		ageStep{},
		requiredFieldsStep{fields: []string{profile.FieldName, profile.FieldPhone, profile.FieldICNumber}},
		canonicalizeStep{},
	}
}

func (o *Orchestrator) reconcile(draft *profile.Draft, log *zap.Logger) []string {
	s := &state{draft: draft}
	warnings := make([]string, 0)

	for _, step := range o.steps {
		result := step.Apply(s)
		warnings = append(warnings, result.Warnings...)

		if len(result.Changed) == 0 && len(result.Warnings) == 0 {
			continue
		}
		log.Debug("reconcile step",
			zap.String("name", step.Name()),
			zap.Strings("changed_fields", result.Changed),
			zap.Strings("warnings", result.Warnings),
		)
	}

	return warnings
}

type experienceStep struct{}

func (experienceStep) Name() string { return "experience" }

func (experienceStep) Apply(s *state) Step {
	segmented := experience.Segment(s.draft.Experience)
	tags := profile.Unique(append(append([]string{}, s.draft.ExperienceTags...), segmented.Tags...))

	var step Step
	if !reflect.DeepEqual(segmented.Entries, s.draft.Experience) {
		step.Changed = append(step.Changed, profile.FieldExperience)
	}
	if !reflect.DeepEqual(tags, s.draft.ExperienceTags) {
		step.Changed = append(step.Changed, profile.FieldExperienceTags)
	}

	s.draft.Experience = segmented.Entries
	s.draft.ExperienceTags = tags
	return step
}

type icNumberStep struct{}

func (icNumberStep) Name() string { return "ic_number" }

func (icNumberStep) Apply(s *state) Step {
	var step Step
	if s.draft.ICNumber == "" {
		return step
	}

	formatted, ok := icnumber.Format(s.draft.ICNumber)
	if !ok {
		step.Warnings = append(step.Warnings, fmt.Sprintf("ic_number %q does not have 12 digits", s.draft.ICNumber))
		return step
	}
	if formatted != s.draft.ICNumber {
		s.draft.ICNumber = formatted
		step.Changed = append(step.Changed, profile.FieldICNumber)
	}

	s.ic = icnumber.Resolve(formatted)
	switch {
	case s.ic.DateOfBirth == "":
		step.Warnings = append(step.Warnings, fmt.Sprintf("ic_number %s does not start with a valid date of birth", formatted))
		if s.draft.DateOfBirth != "" {
			s.draft.DateOfBirth = ""
			step.Changed = append(step.Changed, profile.FieldDateOfBirth)
		}
	case s.draft.DateOfBirth == "":
		s.draft.DateOfBirth = s.ic.DateOfBirth
		step.Changed = append(step.Changed, profile.FieldDateOfBirth)
	case s.draft.DateOfBirth != s.ic.DateOfBirth:
		step.Warnings = append(step.Warnings, fmt.Sprintf(
			"date_of_birth %s does not match ic_number, using %s", s.draft.DateOfBirth, s.ic.DateOfBirth))
		s.draft.DateOfBirth = s.ic.DateOfBirth
		step.Changed = append(step.Changed, profile.FieldDateOfBirth)
	}
	return step
}

type dateOfBirthStep struct{}

func (dateOfBirthStep) Name() string { return "date_of_birth" }

func (dateOfBirthStep) Apply(s *state) Step {
	var step Step
	dob := s.draft.DateOfBirth
	if dob == "" || icnumber.ValidDate(dob) {
		return step
	}

	step.Changed = append(step.Changed, profile.FieldDateOfBirth)
	if normalized, ok := pattern.NormalizeDate(dob); ok {
		s.draft.DateOfBirth = normalized
		return step
	}

	s.draft.DateOfBirth = ""
	step.Warnings = append(step.Warnings, fmt.Sprintf("date_of_birth %q is not a valid date and was dropped", dob))
	return step
}

type ageStep struct{}

func (ageStep) Name() string { return "age" }

func (ageStep) Apply(s *state) Step {
	if s.draft.Age != "" || s.ic.AgeHint == "" {
		return Step{}
	}
	s.draft.Age = s.ic.AgeHint
	return Step{Changed: []string{profile.FieldAge}}
}

type requiredFieldsStep struct {
	fields []string
}

func (requiredFieldsStep) Name() string { return "required_fields" }

func (r requiredFieldsStep) Apply(s *state) Step {
	var step Step
	for _, name := range r.fields {
		if *s.draft.Scalar(name) == "" {
			step.Warnings = append(step.Warnings, name+" is missing")
		}
	}
	return step
}

type canonicalizeStep struct{}

func (canonicalizeStep) Name() string { return "canonicalize" }

func (canonicalizeStep) Apply(s *state) Step {
	s.draft.Canonicalize()
	return Step{}
}
