package pattern

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spigell/profile-drafter/internal/icnumber"
	"github.com/spigell/profile-drafter/internal/profile"
)

const (
	labelName           = `(?:full\s+)?name(?:\s*\(?\s*as\s+(?:per|in)\s+(?:i\s*/\s*c|nric|ic|mykad)\s*\)?)?|nama(?:\s+penuh)?`
	labelICNumber       = `(?:i\s*/\s*c|nric|ic|mykad)(?:\s*(?:no\.?|number|num))?`
	labelDateOfBirth    = `date\s+of\s+birth|d\.?o\.?b\.?|birth\s*date|birthday`
	labelAge            = `age|umur`
	labelRace           = `race|ethnicity|bangsa`
	labelPhone          = `(?:contact|phone|mobile|tel(?:ephone)?|h/?p|handphone|whatsapp)(?:\s*(?:no\.?|number|num))?`
	labelEmail          = `e-?mail(?:\s+address)?`
	labelLocation       = `(?:current\s+)?(?:location|address|area|city|state)|staying\s+(?:in|at)`
	labelTShirtSize     = `t[\s-]?shirt(?:\s+size)?|shirt\s+size|size`
	labelTransportation = `(?:own\s+)?transport(?:ation)?|vehicle`
	labelSpoken         = `(?:spoken\s+)?languages?(?:\s+spoken)?`
	labelHeight         = `height`
	labelTyphoid        = `typhoid(?:\s+(?:injection|vaccine|vaccination|jab))?`
	labelEmergencyName  = `emergency\s+contact(?:\s+person)?(?:\s+name)?`
	labelEmergencyPhone = `emergency\s+(?:contact\s+)?(?:no\.?|number|phone|tel)`

	labelSkills     = `(?:key\s+|other\s+)?skills?(?:\s+set)?`
	labelEducation  = `education(?:al)?(?:\s+(?:background|level))?|(?:highest\s+|academic\s+)?qualifications?`
	labelExperience = `(?:(?:emcee|mc|event|work(?:ing)?|job|part[\s-]*time|previous|past)\s+)?(?:experiences?|exp\.?)|work\s+history|employment(?:\s+history)?`
)

const (
	phoneShape = `(?:\+?6?0)1\d[\s-]?\d{3,4}[\s-]?\d{4}`
	// phoneAlone requires the phone shape not to be part of a longer digit run, such as an IC.
	phoneAlone = `(?:^|[^\d-])(` + phoneShape + `)(?:$|[^\d-])`
	icShape    = `\b\d{6}-?\d{2}-?\d{4}\b`
	emailShape = `[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+`
)

// defaultLanguages is used as the skills list when nothing more specific is found.
var defaultLanguages = []string{"English", "Bahasa Malaysia", "Mandarin"}

var (
	spaces        = regexp.MustCompile(`\s+`)
	nameLike      = regexp.MustCompile(`^[A-Za-z][A-Za-z@'.\- ]{2,60}$`)
	leadingNumber = regexp.MustCompile(`\d{1,3}`)
	phoneInText   = regexp.MustCompile(phoneShape)
	icInText      = regexp.MustCompile(icShape)
	languageSplit = regexp.MustCompile(`(?i)\s*(?:,|;|/|&|\band\b)\s*`)

	headingWords = map[string]struct{}{
		"resume": {}, "curriculum vitae": {}, "profile": {}, "personal details": {},
		"personal information": {}, "candidate profile": {}, "about me": {},
	}
)

// scalarRules holds the ordered cascade for every scalar field.
var scalarRules = map[string][]rule{
	profile.FieldName: chain(
		labeled(labelName, then(titleName)),
		[]rule{fallback(scopeHead, `(?m)^(.+)$`, headName)},
	),
	profile.FieldICNumber: chain(
		labeled(labelICNumber, icValue),
		[]rule{fallback(scopeOwn, icShape, icValue0)},
	),
	profile.FieldDateOfBirth: labeled(labelDateOfBirth, dateValue),
	profile.FieldAge: chain(
		labeled(labelAge, then(firstNumber)),
		[]rule{fallback(scopeOwn, `(?i)\b(\d{2})\s*(?:years?\s*old|y\.?\s*o\b)`, nil)},
	),
	profile.FieldRace:  labeled(labelRace, nil),
	profile.FieldPhone: chain(labeled(labelPhone, nil), []rule{fallback(scopeOwn, phoneAlone, nil)}),
	profile.FieldEmail: chain(
		labeled(labelEmail, then(strings.ToLower)),
		[]rule{fallback(scopeOwn, emailShape, func(g []string) match { return matched(strings.ToLower(g[0])) })},
	),
	profile.FieldLocation:        labeled(labelLocation, nil),
	profile.FieldTShirtSize:      labeled(labelTShirtSize, then(strings.ToUpper)),
	profile.FieldTransportation:  labeled(labelTransportation, nil),
	profile.FieldSpokenLanguages: labeled(labelSpoken, nil),
	profile.FieldHeight: chain(
		labeled(labelHeight, nil),
		[]rule{fallback(scopeOwn, `(?i)\b(1\d{2}(?:\.\d)?\s*cm)\b`, nil)},
	),
	profile.FieldTyphoid:              labeled(labelTyphoid, yesNo),
	profile.FieldEmergencyContactName: labeled(labelEmergencyName, emergencyName),
	profile.FieldEmergencyContactNumber: chain(
		labeled(labelEmergencyPhone, nil),
		labeled(labelEmergencyName, emergencyPhone),
	),
}

func titleName(v string) string {
	// cases.Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.ToLower(spaces.ReplaceAllString(strings.Trim(v, " .,"), " ")))
}

func headName(groups []string) match {
	line := strings.TrimSpace(groups[1])
	if strings.ContainsAny(line, ":@0123456789") || !nameLike.MatchString(line) {
		return unmatched
	}
	if _, heading := headingWords[strings.ToLower(line)]; heading {
		return unmatched
	}
	if words := len(strings.Fields(line)); words < 2 || words > 6 {
		return unmatched
	}
	return matched(titleName(line))
}

func icValue(groups []string) match {
	m := firstGroup(groups)
	if !m.ok {
		return m
	}
	if token := icInText.FindString(m.value); token != "" {
		m.value = token
	}
	formatted, _ := icnumber.Format(m.value)
	return matched(formatted)
}

func icValue0(groups []string) match {
	formatted, ok := icnumber.Format(groups[0])
	if !ok {
		return unmatched
	}
	return matched(formatted)
}

func firstNumber(v string) string {
	return leadingNumber.FindString(v)
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func dateValue(groups []string) match {
	m := firstGroup(groups)
	if !m.ok {
		return m
	}
	if date, ok := NormalizeDate(m.value); ok {
		return matched(date)
	}
	return unmatched
}

// NormalizeDate renders a written date as YYYY-MM-DD. Day-first numeric forms and
// spelled-out months are accepted; anything else, including impossible dates, is rejected.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

func yesNo(groups []string) match {
	m := firstGroup(groups)
	if !m.ok {
		return m
	}
	v := strings.ToLower(m.value)
	switch {
	case strings.HasPrefix(v, "no"), strings.HasPrefix(v, "not"), v == "n", strings.HasPrefix(v, "tidak"), strings.HasPrefix(v, "belum"):
		return matched("No")
	case strings.HasPrefix(v, "y"), strings.HasPrefix(v, "done"), strings.HasPrefix(v, "taken"),
		strings.HasPrefix(v, "completed"), strings.HasPrefix(v, "have"), strings.HasPrefix(v, "ada"), strings.HasPrefix(v, "sudah"):
		return matched("Yes")
	default:
		return unmatched
	}
}

// emergencyName keeps the person part of a combined "name (relation) number" answer.
func emergencyName(groups []string) match {
	m := firstGroup(groups)
	if !m.ok {
		return m
	}
	name := phoneInText.ReplaceAllString(m.value, "")
	name = strings.Trim(strings.TrimSpace(name), "-–,/:：")
	return matched(titleName(name))
}

func emergencyPhone(groups []string) match {
	m := firstGroup(groups)
	if !m.ok {
		return m
	}
	return matched(phoneInText.FindString(m.value))
}

func splitLanguages(v string) []string {
	parts := languageSplit.Split(v, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.Trim(p, ".")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
