package inferrer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestColumnNameToKey(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		expected string
	}{
		{"simple", "Server Name", "server_name"},
		{"slash", "IP/Subnet", "ip_subnet"},
		{"backslash", "Domain\\User", "domain_user"},
		{"dash", "Two-Factor Code", "two_factor_code"},
		{"punctuation", "Notes (Internal)!", "notes_internal"},
		{"mixed separators", " Primary / Backup - DNS ", "primary_backup_dns"},
		{"unicode letters kept", "Téléphone Bureau", "téléphone_bureau"},
		{"digits", "Port 2 Override", "port_2_override"},
		{"empty", "", "field"},
		{"whitespace only", "   ", "field"},
		{"punctuation only", "!!!", "field"},
		{"underscores collapse", "a__b___c", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColumnNameToKey(tt.column))
			// Pure function: re-invocation yields the same key
			assert.Equal(t, tt.expected, ColumnNameToKey(tt.column))
		})
	}
}

func TestInferTypeNamePatterns(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	// TOTP wins over password even though "secret" is a password pattern,
	// and regardless of value content
	def := fi.InferType("TOTP Secret", []string{"123456", "654321"}, 0)
	assert.Equal(t, models.FieldTypeTOTP, def.Type)

	def = fi.InferType("2FA Code", nil, 0)
	assert.Equal(t, models.FieldTypeTOTP, def.Type)

	def = fi.InferType("Admin Password", []string{"hunter2"}, 0)
	assert.Equal(t, models.FieldTypePassword, def.Type)

	def = fi.InferType("API Token", nil, 0)
	assert.Equal(t, models.FieldTypePassword, def.Type)
}

func TestInferTypeBooleanBeforeNumeric(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	def := fi.InferType("Active", []string{"1", "0", "1"}, 0)
	assert.Equal(t, models.FieldTypeCheckbox, def.Type)

	def = fi.InferType("Enabled", []string{"Yes", "no", "TRUE", "off"}, 0)
	assert.Equal(t, models.FieldTypeCheckbox, def.Type)
}

func TestInferTypeNumber(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	def := fi.InferType("Port", []string{"443", "8080", "-1", "3.14"}, 0)
	assert.Equal(t, models.FieldTypeNumber, def.Type)

	// A single non-numeric value degrades the column
	def = fi.InferType("Port", []string{"443", "n/a"}, 0)
	assert.NotEqual(t, models.FieldTypeNumber, def.Type)
}

func TestInferTypeDate(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	tests := []struct {
		name   string
		values []string
	}{
		{"iso date", []string{"2023-01-15", "2024-12-01"}},
		{"slash date", []string{"01/15/2023", "12/1/2023"}},
		{"iso datetime", []string{"2023-01-15 10:30:00", "2023-01-15T10:30"}},
		{"yyyy slash", []string{"2023/1/15"}},
		{"dd dash", []string{"15-01-2023"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := fi.InferType("Expires On", tt.values, 0)
			assert.Equal(t, models.FieldTypeDate, def.Type)
		})
	}

	def := fi.InferType("Expires On", []string{"2023-01-15", "sometime"}, 0)
	assert.NotEqual(t, models.FieldTypeDate, def.Type)
}

func TestInferTypeTextbox(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	long := strings.Repeat("x", 250)
	def := fi.InferType("Notes", []string{long, "short", "line1\nline2", "<p>html</p>"}, 0)
	assert.Equal(t, models.FieldTypeTextbox, def.Type)

	// Below the half threshold it stays text
	def = fi.InferType("Notes", []string{long, "a", "b", "c"}, 0)
	assert.NotEqual(t, models.FieldTypeTextbox, def.Type)
}

func TestInferTypeSelect(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	values := []string{"prod", "dev", "prod", "dev", "prod", "staging"}
	def := fi.InferType("Environment", values, 0)
	require.Equal(t, models.FieldTypeSelect, def.Type)
	assert.Equal(t, []string{"dev", "prod", "staging"}, def.Options)
}

func TestInferTypeSelectRejectsElevenUniqueValues(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	// 11 unique values, each repeated, is still over the option limit
	var values []string
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		values = append(values, v, v)
	}
	def := fi.InferType("Environment", values, 0)
	assert.Equal(t, models.FieldTypeText, def.Type)
}

func TestInferTypeSelectRejectsMostlyUniqueText(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	// Bulk unique values never look like a closed option set
	f := faker.NewWithSeed(rand.NewSource(42))
	var values []string
	for i := 0; i < 30; i++ {
		values = append(values, f.UUID().V4())
	}
	def := fi.InferType("Reference", values, 0)
	assert.Equal(t, models.FieldTypeText, def.Type)
}

func TestInferTypeDefaults(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	def := fi.InferType("Comments", nil, 0)
	assert.Equal(t, models.FieldTypeText, def.Type)
	assert.False(t, def.Required)

	def = fi.InferType("Comments", []string{"", "  ", ""}, 0)
	assert.Equal(t, models.FieldTypeText, def.Type)
}

func TestInferSchema(t *testing.T) {
	fi := NewFieldInferrer(testLogger())

	columns := []string{"Name", "Environment", "Port", "Internal ID", "Notes"}
	rows := []map[string]string{
		{"Name": "web-1", "Environment": "prod", "Port": "443", "Internal ID": "x1", "Notes": "ok"},
		{"Name": "web-2", "Environment": "prod", "Port": "80", "Internal ID": "x2", "Notes": "ok"},
		{"Name": "db-1", "Environment": "dev", "Port": "5432", "Internal ID": "x3", "Notes": "ok"},
		{"Name": "db-2", "Environment": "dev", "Port": "5432", "Internal ID": "x4", "Notes": "ok"},
	}

	defs := fi.InferSchema(columns, rows, map[string]bool{"Internal ID": true})
	require.Len(t, defs, 4)

	assert.Equal(t, "name", defs[0].Key)
	assert.Equal(t, models.FieldTypeSelect, defs[1].Type)
	assert.Equal(t, models.FieldTypeNumber, defs[2].Type)
	assert.Equal(t, "notes", defs[3].Key)

	// First three surviving columns are list-view defaults, by position
	assert.True(t, defs[0].ShowInList)
	assert.True(t, defs[1].ShowInList)
	assert.True(t, defs[2].ShowInList)
	assert.False(t, defs[3].ShowInList)
}
