package pattern

import (
	"regexp"
	"strings"
)

var (
	sectionLabels = []string{labelSkills, labelEducation, labelExperience}
	scalarLabels  = []string{
		labelName, labelICNumber, labelDateOfBirth, labelAge, labelRace, labelPhone, labelEmail,
		labelLocation, labelTShirtSize, labelTransportation, labelSpoken, labelHeight, labelTyphoid,
		labelEmergencyName, labelEmergencyPhone,
	}

	// boundary marks the line that closes a section: another section heading or a
	// "Label:" line of a scalar field.
	boundary = regexp.MustCompile(`(?i)^[ \t]*(?:\d{1,2}[ \t]*[.)][ \t]*)?(?:(?:` +
		strings.Join(sectionLabels, "|") + `)[ \t]*(?:[:：].*)?$|(?:` +
		strings.Join(scalarLabels, "|") + `)[ \t]*[:：])`)

	marker       = regexp.MustCompile(`^[ \t]*(?:\d{1,2}[ \t]*[.)]|[-•▪●*])[ \t]*`)
	enumeration  = regexp.MustCompile(`(?m)^[ \t]*(?:\d{1,2}[.)]|[-•▪●*])[ \t]+|[ \t]\d{1,2}[.)][ \t]+`)
	dateHeading  = regexp.MustCompile(`(?i)\b(?:19|20)\d{2}\s*(?:-|–|to|until)\s*(?:(?:19|20)\d{2}\b|present|current|now|today)|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(?:19|20)\d{2}\b`)
	employerLine = regexp.MustCompile(`(?i)^[ \t]*(?:company|employer|organi[sz]ation|agency)[ \t]*[:：]`)
	skillSplit   = regexp.MustCompile(`\s*[,;•]\s*`)

	skillsHeading     = sectionHeading(labelSkills)
	educationHeading  = sectionHeading(labelEducation)
	experienceHeading = sectionHeading(labelExperience)
)

// minSegment is the shortest text accepted as an experience segment.
const minSegment = 3

func sectionHeading(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[ \t]*(?:\d{1,2}[ \t]*[.)][ \t]*)?(?:` + label +
		`)[ \t]*(?:(?:[:：]|[ \t][-–])[ \t]*(.*))?$`)
}

// sections returns the content lines of every section opened by heading.
// Content written on the heading line itself is kept as the first line.
func sections(in *input, heading *regexp.Regexp) [][]string {
	var out [][]string
	for i := 0; i < len(in.lines); i++ {
		m := heading.FindStringSubmatch(in.lines[i])
		if m == nil {
			continue
		}

		var block []string
		if inline := strings.TrimSpace(m[1]); inline != "" {
			block = append(block, inline)
		}

		j := i + 1
		for ; j < len(in.lines); j++ {
			if boundary.MatchString(in.lines[j]) {
				break
			}
			block = append(block, in.lines[j])
		}

		out = append(out, block)
		i = j - 1
	}
	return out
}

func sectionLines(in *input, heading *regexp.Regexp) []string {
	var out []string
	for _, block := range sections(in, heading) {
		for _, line := range block {
			if line = strings.TrimSpace(marker.ReplaceAllString(line, "")); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// experienceStrategy splits experience text into segments.
type experienceStrategy func(in *input, blocks [][]string) []string

var experienceStrategies = []experienceStrategy{
	byEnumeration,
	byHeadings,
	byLines,
}

func experienceEntries(in *input) []string {
	blocks := sections(in, experienceHeading)

	var single []string
	for _, strategy := range experienceStrategies {
		segments := strategy(in, blocks)
		if len(segments) > 1 {
			return segments
		}
		if len(segments) == 1 && single == nil {
			single = segments
		}
	}

	if single == nil {
		return []string{}
	}
	return single
}

// byEnumeration splits experience blocks on list markers such as "1)", "2." or bullets.
func byEnumeration(_ *input, blocks [][]string) []string {
	var out []string
	for _, block := range blocks {
		text := strings.Join(block, "\n")
		idx := enumeration.FindAllStringIndex(text, -1)
		if len(idx) == 0 {
			continue
		}

		out = appendSegment(out, text[:idx[0][0]])
		for k, loc := range idx {
			end := len(text)
			if k+1 < len(idx) {
				end = idx[k+1][0]
			}
			out = appendSegment(out, text[loc[1]:end])
		}
	}
	return out
}

// byHeadings starts a new segment at every employer or date range line. Without an
// experience section the whole text is scanned.
func byHeadings(in *input, blocks [][]string) []string {
	lines := in.lines
	if len(blocks) > 0 {
		lines = nil
		for _, block := range blocks {
			lines = append(lines, block...)
		}
	}

	var (
		out     []string
		current []string
	)
	for _, line := range lines {
		if dateHeading.MatchString(line) || employerLine.MatchString(line) {
			if current != nil {
				out = appendSegment(out, strings.Join(current, " "))
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		out = appendSegment(out, strings.Join(current, " "))
	}
	return out
}

// byLines treats every non-empty line of the experience sections as one segment.
func byLines(_ *input, blocks [][]string) []string {
	var out []string
	for _, block := range blocks {
		for _, line := range block {
			out = appendSegment(out, line)
		}
	}
	return out
}

func appendSegment(out []string, s string) []string {
	s = marker.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if len(s) < minSegment {
		return out
	}
	return append(out, s)
}

func skillsSection(in *input) []string {
	var out []string
	for _, line := range sectionLines(in, skillsHeading) {
		for _, skill := range skillSplit.Split(line, -1) {
			if skill = strings.TrimSpace(skill); skill != "" {
				out = append(out, skill)
			}
		}
	}
	return out
}
