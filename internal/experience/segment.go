package experience

import (
	"regexp"
	"strings"

	"github.com/spigell/profile-drafter/internal/profile"
)

// Experience tags recognised in entries.
const (
	TagPromoter        = "Promoter"
	TagMysteryShopper  = "Mystery Shopper"
	TagSupervisor      = "Supervisor/Team Leader"
	TagRunner          = "Runner"
	TagEventSetup      = "Event Setup"
	TagEmcee           = "Emcee/MC"
	TagSales           = "Sales"
	TagCustomerService = "Customer Service"
)

type role struct {
	tag     string
	pattern *regexp.Regexp
}

var vocabulary = []role{
	{tag: TagPromoter, pattern: regexp.MustCompile(`(?i)\bpromoters?\b`)},
	{tag: TagMysteryShopper, pattern: regexp.MustCompile(`(?i)\bmystery\s+shop(?:per|pers|ping)\b`)},
	{tag: TagSupervisor, pattern: regexp.MustCompile(`(?i)\b(?:supervisors?|team\s*lead(?:er)?s?)\b`)},
	{tag: TagRunner, pattern: regexp.MustCompile(`(?i)\brunners?\b`)},
	{tag: TagEventSetup, pattern: regexp.MustCompile(`(?i)\bevents?\s+set[\s-]?up\b`)},
	{tag: TagEmcee, pattern: regexp.MustCompile(`(?i)\b(?:emcee|mc|master\s+of\s+ceremon(?:y|ies))\b`)},
	{tag: TagSales, pattern: regexp.MustCompile(`(?i)\bsales\b`)},
	{tag: TagCustomerService, pattern: regexp.MustCompile(`(?i)\bcustomer\s+service\b`)},
}

// multiEmployer matches "{role} - {employer list}"; the list is checked for commas separately.
var multiEmployer = regexp.MustCompile(`^(.+?)(?:\s+[-–—]\s*|\s*[-–—]\s+|\s*:\s*)(.+)$`)

// maxRoleWords keeps ordinary sentences containing a dash from being read as a role.
const maxRoleWords = 5

// notRole matches text that leads an entry but names something other than a role:
// a date or year range, or a field label such as "Company:".
var notRole = regexp.MustCompile(`(?i)\d|^(?:company|employer|organi[sz]ation|agency|client|brand|location|venue|place|address|period|date|duration|year)s?$`)

// Result is the outcome of segmenting experience entries.
type Result struct {
	Entries []string
	Tags    []string
}

// Segment expands "{role} - {a}, {b}" entries into one "{role} at {employer}" entry per
// employer and collects experience tags. Other entries are kept as they are.
func Segment(raw []string) Result {
	entries := make([]string, 0, len(raw))
	tags := make([]string, 0)

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if roleName, employers, ok := splitEmployers(entry); ok {
			for _, employer := range employers {
				entries = append(entries, roleName+" at "+employer)
			}
			tags = append(tags, DetectTags(entry)...)
			continue
		}

		entries = append(entries, entry)
		tags = append(tags, DetectTags(entry)...)
	}

	return Result{
		Entries: profile.Unique(entries),
		Tags:    profile.Unique(tags),
	}
}

// DetectTags returns the vocabulary tags found in s, in vocabulary order.
func DetectTags(s string) []string {
	var found []string
	for _, r := range vocabulary {
		if r.pattern.MatchString(s) {
			found = append(found, r.tag)
		}
	}
	return found
}

func splitEmployers(entry string) (string, []string, bool) {
	m := multiEmployer.FindStringSubmatch(entry)
	if m == nil {
		return "", nil, false
	}

	roleName := strings.TrimSpace(m[1])
	list := strings.TrimSpace(m[2])
	if roleName == "" || !strings.Contains(list, ",") || len(strings.Fields(roleName)) > maxRoleWords || notRole.MatchString(roleName) {
		return "", nil, false
	}

	employers := make([]string, 0)
	for _, employer := range strings.Split(list, ",") {
		employer = strings.Trim(strings.TrimSpace(employer), ".")
		if employer != "" {
			employers = append(employers, employer)
		}
	}
	if len(employers) < 2 {
		return "", nil, false
	}

	return roleName, employers, true
}
