package inferrer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// Column-name patterns that force a field type regardless of values.
// TOTP is checked before password because TOTP columns often literally
// contain the word "secret".
var (
	totpPattern     = regexp.MustCompile(`(?i)(totp|otp|mfa|2fa|two[-_ ]?factor)`)
	passwordPattern = regexp.MustCompile(`(?i)(password|secret|key|credential|token)`)
)

// datePatterns are the accepted date/datetime formats. The US and EU slash
// patterns are intentionally identical; disambiguating them (e.g. by day>12)
// is pending product clarification, so both stay permissive.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),                              // ISO date
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),                          // US slash date
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),                          // EU slash date
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?`),       // ISO datetime
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}(:\d{2})?$`),   // US datetime
	regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`),                          // YYYY/MM/DD
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),                          // DD-MM-YYYY
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// booleanValues are the accepted case-insensitive boolean spellings
var booleanValues = map[string]bool{
	"true": true, "yes": true, "1": true, "on": true, "enabled": true,
	"false": true, "no": true, "0": true, "off": true, "disabled": true,
}

const (
	maxSelectOptions = 10
	longValueLength  = 200
	maxShowInList    = 3
)

// FieldInferrer infers custom asset field schemas from export columns
type FieldInferrer struct {
	Logger *logrus.Logger
}

// NewFieldInferrer creates a new field inferrer
func NewFieldInferrer(logger *logrus.Logger) *FieldInferrer {
	return &FieldInferrer{Logger: logger}
}

// ColumnNameToKey derives a snake_case field key from a column header.
// It is pure and total; unusable headers fall back to "field".
func ColumnNameToKey(name string) string {
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_", "-", "_").Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Whitespace runs become single underscores
	s = strings.Join(strings.Fields(s), "_")

	// Collapse repeated underscores left over from the replacements
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	s = strings.ToLower(s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "field"
	}
	return s
}

// InferType infers a field definition for one column from its name and
// sample values. It never fails; absence of signal degrades to text.
func (fi *FieldInferrer) InferType(columnName string, values []string, fieldIndex int) models.FieldDefinition {
	def := models.FieldDefinition{
		Key:        ColumnNameToKey(columnName),
		Name:       columnName,
		Type:       models.FieldTypeText,
		Required:   false,
		ShowInList: fieldIndex < maxShowInList,
	}

	// Name patterns win over value heuristics
	if totpPattern.MatchString(columnName) {
		def.Type = models.FieldTypeTOTP
		return def
	}
	if passwordPattern.MatchString(columnName) {
		def.Type = models.FieldTypePassword
		return def
	}

	nonEmpty := nonEmptyValues(values)
	if len(nonEmpty) == 0 {
		return def
	}

	if allBoolean(nonEmpty) {
		// Checked before numeric so "1"/"0" columns stay checkboxes
		def.Type = models.FieldTypeCheckbox
		return def
	}
	if allNumeric(nonEmpty) {
		def.Type = models.FieldTypeNumber
		return def
	}
	if allDates(nonEmpty) {
		def.Type = models.FieldTypeDate
		return def
	}
	if mostlyLong(nonEmpty) {
		def.Type = models.FieldTypeTextbox
		return def
	}
	if suitableForSelect(nonEmpty) {
		def.Type = models.FieldTypeSelect
		def.Options = selectOptions(nonEmpty)
		return def
	}

	return def
}

// InferSchema infers field definitions for every column, in column order.
// The first three surviving columns are marked for the default list view.
func (fi *FieldInferrer) InferSchema(columns []string, rows []map[string]string, skipColumns map[string]bool) []models.FieldDefinition {
	var defs []models.FieldDefinition

	for _, column := range columns {
		if skipColumns[column] {
			continue
		}

		values := make([]string, 0, len(rows))
		for _, row := range rows {
			values = append(values, row[column])
		}

		def := fi.InferType(column, values, len(defs))
		defs = append(defs, def)

		if fi.Logger != nil {
			fi.Logger.Debugf("Inferred column %q as %s (key=%s)", column, def.Type, def.Key)
		}
	}

	return defs
}

func nonEmptyValues(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func allBoolean(values []string) bool {
	for _, v := range values {
		if !booleanValues[strings.ToLower(strings.TrimSpace(v))] {
			return false
		}
	}
	return true
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return false
		}
	}
	return true
}

func allDates(values []string) bool {
	for _, v := range values {
		if !matchesAnyDate(strings.TrimSpace(v)) {
			return false
		}
	}
	return true
}

func matchesAnyDate(value string) bool {
	for _, p := range datePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// mostlyLong reports whether at least half of the values look like
// long-form content: embedded newlines, HTML tags, or over 200 characters.
func mostlyLong(values []string) bool {
	longValues := 0
	for _, v := range values {
		if strings.Contains(v, "\n") || htmlTagPattern.MatchString(v) || len(v) > longValueLength {
			longValues++
		}
	}
	return longValues > 0 && longValues*2 >= len(values)
}

// suitableForSelect reports whether the values behave like a closed option
// set: few unique values and at least half of all occurrences repeated.
// The repetition requirement rejects short samples of mostly-unique text.
func suitableForSelect(values []string) bool {
	counts := make(map[string]int)
	for _, v := range values {
		counts[strings.TrimSpace(v)]++
	}
	if len(counts) > maxSelectOptions {
		return false
	}

	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated += c
		}
	}
	return repeated*2 >= len(values)
}

func selectOptions(values []string) []string {
	seen := make(map[string]bool)
	var options []string
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" && !seen[trimmed] {
			seen[trimmed] = true
			options = append(options, trimmed)
		}
	}
	sort.Strings(options)
	return options
}
