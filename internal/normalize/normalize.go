package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the shape held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindStringList
	KindRecordList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStringList:
		return "string_list"
	case KindRecordList:
		return "record_list"
	default:
		return "null"
	}
}

// Value is an extracted field value of one of the shapes an extractor may return.
// Only the member selected by Kind is meaningful.
type Value struct {
	Kind    Kind
	Str     string
	Strings []string
	Records []map[string]any
}

// String builds a KindString value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Strings builds a KindStringList value.
func Strings(list ...string) Value { return Value{Kind: KindStringList, Strings: list} }

// Records builds a KindRecordList value.
func Records(records ...map[string]any) Value { return Value{Kind: KindRecordList, Records: records} }

var listSeparators = regexp.MustCompile(`[,;\n]`)

// FromAny converts a decoded JSON value into a tagged Value. This is the only place
// where the runtime shape of loosely typed input is inspected.
func FromAny(v any) Value {
	switch typed := v.(type) {
	case nil:
		return Value{}
	case Value:
		return typed
	case string:
		return String(typed)
	case []string:
		return Strings(typed...)
	case map[string]any:
		return Records(typed)
	case []map[string]any:
		return Records(typed...)
	case []any:
		return fromSlice(typed)
	default:
		return Value{}
	}
}

func fromSlice(items []any) Value {
	records := make([]map[string]any, 0, len(items))
	allRecords := true
	for _, item := range items {
		if item == nil {
			continue
		}
		m, ok := item.(map[string]any)
		if !ok {
			allRecords = false
			break
		}
		records = append(records, m)
	}
	if allRecords && len(records) > 0 {
		return Records(records...)
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case nil:
		case string:
			list = append(list, typed)
		case map[string]any:
			list = append(list, renderRecord(typed))
		default:
			list = append(list, scalarString(typed))
		}
	}
	return Strings(list...)
}

// ToStringList renders v as a clean ordered list: trimmed, without empty entries and
// without duplicates. The result is never nil, and a clean list maps onto itself.
func ToStringList(v Value) []string {
	switch v.Kind {
	case KindStringList:
		return clean(v.Strings)
	case KindRecordList:
		rendered := make([]string, 0, len(v.Records))
		for _, record := range v.Records {
			rendered = append(rendered, renderRecord(record))
		}
		return clean(rendered)
	case KindString:
		return fromString(v.Str)
	default:
		return []string{}
	}
}

// ToStringListAny is ToStringList(FromAny(v)).
func ToStringListAny(v any) []string {
	return ToStringList(FromAny(v))
}

func fromString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var decoded []any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return ToStringList(fromSlice(decoded))
		}
	}

	return clean(listSeparators.Split(trimmed, -1))
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// renderRecord formats work and education records in their human-readable form and
// falls back to JSON with sorted keys for anything else.
func renderRecord(record map[string]any) string {
	get := func(keys ...string) string {
		for _, key := range keys {
			for k, v := range record {
				if strings.EqualFold(k, key) {
					if s := strings.TrimSpace(scalarString(v)); s != "" {
						return s
					}
				}
			}
		}
		return ""
	}

	if title := get("title", "role", "position"); title != "" {
		return joinParts(title, get("company", "employer", "organization"), get("duration", "period", "dates"))
	}

	degree := get("degree", "qualification")
	institution := get("institution", "school", "university")
	if degree != "" || institution != "" {
		return joinParts(degree, institution, get("year", "graduation_year"))
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Sprintf("%v", record)
	}
	return string(data)
}

// joinParts renders "{head} at {place} ({when})" using only the non-empty parts.
func joinParts(head, place, when string) string {
	var b strings.Builder
	b.WriteString(head)
	if place != "" {
		if b.Len() > 0 {
			b.WriteString(" at ")
		}
		b.WriteString(place)
	}
	if when != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(" + when + ")")
	}
	return b.String()
}

func scalarString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(data)
	}
}
