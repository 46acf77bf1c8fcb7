package pattern

import (
	"regexp"
	"strings"
)

// scope selects the part of the input a rule is evaluated against.
type scope int

const (
	scopeText scope = iota
	// scopeHead is the first few non-empty lines, where untitled names usually sit.
	scopeHead
	// scopeOwn is the text without lines that describe someone else (emergency contacts).
	scopeOwn
)

// match is the tagged outcome of a rule.
type match struct {
	value string
	ok    bool
}

func matched(v string) match {
	v = strings.TrimSpace(v)
	return match{value: v, ok: v != ""}
}

var unmatched = match{}

// rule pairs a pattern with the function turning its submatches into a value.
type rule struct {
	scope   scope
	pattern *regexp.Regexp
	extract func(groups []string) match
}

// input is the text prepared once per extraction for every scope.
type input struct {
	text  string
	lines []string
	head  string
	own   string
}

const headLines = 5

func prepare(text string) *input {
	in := &input{text: text}

	var head, own []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		in.lines = append(in.lines, line)

		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(head) < headLines {
			head = append(head, strings.TrimSpace(line))
		}
		if !strings.Contains(strings.ToLower(line), "emergency") {
			own = append(own, line)
		}
	}

	in.head = strings.Join(head, "\n")
	in.own = strings.Join(own, "\n")
	return in
}

func (in *input) scoped(s scope) string {
	switch s {
	case scopeHead:
		return in.head
	case scopeOwn:
		return in.own
	default:
		return in.text
	}
}

// cascade evaluates rules in order and returns the first non-empty match.
func cascade(in *input, rules []rule) match {
	for _, r := range rules {
		for _, groups := range r.pattern.FindAllStringSubmatch(in.scoped(r.scope), -1) {
			extract := r.extract
			if extract == nil {
				extract = firstGroup
			}
			if m := extract(groups); m.ok {
				return m
			}
		}
	}
	return unmatched
}

func firstGroup(groups []string) match {
	if len(groups) < 2 {
		return unmatched
	}
	return matched(trimValue(groups[1]))
}

// trimValue removes decoration commonly left around form answers.
func trimValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "*_\"'")
	v = strings.TrimRight(v, ",;")
	if isPlaceholder(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

func isPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "-", "--", "n/a", "na", "nil", "none", "null", "tbc", "tba":
		return true
	}
	return false
}

// labeled builds the three label-driven rules for a field, most specific first:
// "Label: value", "1. Label - value" and the looser "Label - value".
func labeled(label string, extract func([]string) match) []rule {
	return []rule{
		{
			pattern: regexp.MustCompile(`(?im)^[ \t]*(?:` + label + `)[ \t]*[:：][ \t]*(.+?)[ \t]*$`),
			extract: extract,
		},
		{
			pattern: regexp.MustCompile(`(?im)^[ \t]*\d{1,2}[ \t]*[.)][ \t]*(?:` + label + `)[ \t]*(?:([:：\-–=])[ \t]*|[ \t]+)(.+?)[ \t]*$`),
			extract: numbered(extract),
		},
		{
			pattern: regexp.MustCompile(`(?im)^[ \t]*(?:` + label + `)[ \t]+[-–=][ \t]*(.+?)[ \t]*$`),
			extract: extract,
		},
	}
}

// labelTail matches words that continue a longer label, as in "Emergency Contact Number".
var labelTail = regexp.MustCompile(`(?i)^(?:no\.|(?:no|number|num|phone|tel|name|person|contact|address|size)\b)`)

// numbered adapts extract to the numbered form, whose separator group comes first.
// Without an explicit separator, a value starting with another label word belongs to a
// longer label and is rejected.
func numbered(extract func([]string) match) func([]string) match {
	if extract == nil {
		extract = firstGroup
	}
	return func(groups []string) match {
		if len(groups) < 3 {
			return unmatched
		}
		if groups[1] == "" && labelTail.MatchString(strings.TrimSpace(groups[2])) {
			return unmatched
		}
		return extract([]string{groups[0], groups[2]})
	}
}

// fallback builds a heuristic rule evaluated over the given scope.
func fallback(s scope, expr string, extract func([]string) match) rule {
	return rule{scope: s, pattern: regexp.MustCompile(expr), extract: extract}
}

// chain combines rule groups into one ordered cascade.
func chain(groups ...[]rule) []rule {
	var out []rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// then applies a value transformation after the first-group extraction.
func then(transform func(string) string) func([]string) match {
	return func(groups []string) match {
		m := firstGroup(groups)
		if !m.ok {
			return m
		}
		return matched(transform(m.value))
	}
}
