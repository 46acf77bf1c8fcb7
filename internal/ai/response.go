package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/spigell/profile-drafter/internal/normalize"
)

//go:embed response.schema.json
var responseSchemaJSON string

var responseSchema = jsonschema.MustCompileString("response.schema.json", responseSchemaJSON)

type rawField struct {
	Value         any    `mapstructure:"value"`
	Confidence    string `mapstructure:"confidence"`
	Reasoning     string `mapstructure:"reasoning"`
	SourceText    string `mapstructure:"sourceText"`
	SourceSnippet string `mapstructure:"source_snippet"`
}

// ParseResult interprets the content returned by an inference provider. Content that is
// not a JSON object yields a *SchemaError. Shape deviations inside the object are
// tolerated: missing keys become empty values and schema violations become warnings.
func ParseResult(content string) (*Result, error) {
	cleaned := extractJSON(content)
	if cleaned == "" {
		return nil, &SchemaError{Content: content}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &SchemaError{Content: content, Err: err}
	}
	if doc == nil {
		return nil, &SchemaError{Content: content, Err: errors.New("null document")}
	}

	result := &Result{
		Fields:            map[string]FieldExtraction{},
		Lists:             map[string]normalize.Value{},
		OverallConfidence: overallConfidence(doc),
		Suggestions:       normalize.ToStringListAny(doc["suggestions"]),
		Warnings:          normalize.ToStringListAny(doc["warnings"]),
		Raw:               content,
	}

	fields, _ := doc["fields"].(map[string]any)
	for name, raw := range fields {
		field, list, err := decodeField(raw)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("field %q: %v", name, err))
		}
		result.Fields[name] = field
		if list.Kind != normalize.KindNull {
			result.Lists[name] = list
		}
	}

	if err := responseSchema.Validate(doc); err != nil {
		result.Warnings = append(result.Warnings, schemaWarning(err))
	}

	return result, nil
}

func decodeField(raw any) (FieldExtraction, normalize.Value, error) {
	entry, ok := raw.(map[string]any)
	if !ok {
		entry = map[string]any{"value": raw}
	}

	var decoded rawField
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return FieldExtraction{Confidence: ConfidenceLow}, normalize.Value{}, err
	}
	// Partial decodes keep whatever attributes were usable.
	decodeErr := decoder.Decode(entry)

	field := FieldExtraction{
		Confidence:    ParseConfidence(decoded.Confidence),
		Reasoning:     strings.TrimSpace(decoded.Reasoning),
		SourceSnippet: strings.TrimSpace(decoded.SourceText),
	}
	if field.SourceSnippet == "" {
		field.SourceSnippet = strings.TrimSpace(decoded.SourceSnippet)
	}

	var list normalize.Value
	switch decoded.Value.(type) {
	case []any, map[string]any:
		list = normalize.FromAny(decoded.Value)
		field.Value = strings.Join(normalize.ToStringList(list), ", ")
	default:
		field.Value = coerceString(decoded.Value)
	}

	return field, list, decodeErr
}

func overallConfidence(doc map[string]any) int {
	raw, ok := doc["overallConfidence"]
	if !ok {
		raw = doc["overall_confidence"]
	}

	score := coerceFloat(raw)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return DefaultOverallConfidence
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func schemaWarning(err error) string {
	msg := err.Error()
	var validation *jsonschema.ValidationError
	if errors.As(err, &validation) {
		leaf := validation
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		msg = fmt.Sprintf("%s: %s", leaf.InstanceLocation, leaf.Message)
	}
	return "response does not match the expected shape: " + strings.Join(strings.Fields(msg), " ")
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	// Prose around the object.
	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
