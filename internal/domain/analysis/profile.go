package analysis

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// profileFields fixes the order attributes appear in the prompt.
var profileFields = []string{
	"name",
	"age",
	"gender",
	"height",
	"weight",
	"dietary_preferences",
	"allergies",
	"medical_conditions",
	"lifestyle_habits",
}

// FormatProfile renders one "- Title: value" line per populated attribute.
// It returns "" when nothing is populated.
func FormatProfile(p Profile) string {
	if len(p) == 0 {
		return ""
	}
	lines := make([]string, 0, len(profileFields))
	for _, key := range profileFields {
		value, ok := formatValue(p[key])
		if !ok {
			continue
		}
		lines = append(lines, "- "+titleCase(key)+": "+value)
	}
	return strings.Join(lines, "\n")
}

func profileBlock(p Profile) string {
	text := FormatProfile(p)
	if text == "" {
		return ""
	}
	return "\n\nUSER PROFILE:\n" + text
}

func formatValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	var out string
	switch rv.Kind() {
	case reflect.String:
		out = rv.String()
	case reflect.Float32, reflect.Float64:
		out = formatFloat(rv.Float())
	default:
		out = fmt.Sprint(rv.Interface())
	}
	if strings.TrimSpace(out) == "" {
		return "", false
	}
	return out, true
}

// formatFloat keeps one fractional digit on whole numbers, so 170 reads "170.0".
func formatFloat(f float64) string {
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eEnN") {
		out += ".0"
	}
	return out
}

func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
