// Package pattern extracts a candidate profile from free text with an ordered cascade of
// label, numbered-list and positional patterns. It performs no I/O.
package pattern

import (
	"strings"

	"github.com/spigell/profile-drafter/internal/profile"
)

// Extractor is the deterministic extraction strategy. The zero value is not usable;
// construct it with New. An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	defaultSkills []string
}

// New returns an Extractor. When defaultSkills is empty the common local languages
// are used as the skills fallback.
func New(defaultSkills ...string) *Extractor {
	skills := profile.Unique(defaultSkills)
	if len(skills) == 0 {
		skills = defaultLanguages
	}
	return &Extractor{defaultSkills: skills}
}

// Extract builds a draft from text. It never fails: fields without a match are left
// empty, and empty input yields an empty draft.
func (e *Extractor) Extract(text string) *profile.Draft {
	draft := profile.New()
	draft.RawText = text

	if strings.TrimSpace(text) == "" {
		return draft
	}

	in := prepare(text)

	for _, field := range profile.ScalarFields {
		if m := cascade(in, scalarRules[field]); m.ok {
			*draft.Scalar(field) = m.value
		}
	}

	draft.Skills = e.skills(in, draft.SpokenLanguages)
	draft.Experience = experienceEntries(in)
	draft.Education = sectionLines(in, educationHeading)
	draft.Canonicalize()

	return draft
}

func (e *Extractor) skills(in *input, spoken string) []string {
	if spoken != "" {
		if languages := splitLanguages(spoken); len(languages) > 0 {
			return languages
		}
	}

	if skills := skillsSection(in); len(skills) > 0 {
		return skills
	}

	return append([]string(nil), e.defaultSkills...)
}
