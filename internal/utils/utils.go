package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bigmountainben/itglue-migrate/internal/detector"
	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("ITGLUE_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) {
	if _, err := os.Stat(envFile); err != nil {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return
	}
	logger.Infof("Loaded environment variables from %s", envFile)
}

// GetEnvDefault gets a string value from an environment variable
func GetEnvDefault(varName, defaultValue string) string {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}
	return value
}

// PrintSchemaReport prints the inferred field definitions of one asset type
func PrintSchemaReport(typeName string, fields []models.FieldDefinition) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("INFERRED SCHEMA: %s\n", typeName)
	fmt.Println(strings.Repeat("=", 60))

	for _, field := range fields {
		listMarker := " "
		if field.ShowInList {
			listMarker = "*"
		}
		fmt.Printf("  %s %-30s %-10s key=%s\n", listMarker, field.Name, field.Type, field.Key)
		if len(field.Options) > 0 {
			fmt.Printf("      options: %s\n", strings.Join(field.Options, ", "))
		}
	}

	fmt.Println(strings.Repeat("=", 60))
}

// PrintWarningReport prints every warning grouped by severity followed by
// the summary used as the pre-flight gate
func PrintWarningReport(warnings []models.Warning, summary detector.Summary) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("MIGRATION PRE-FLIGHT REPORT")
	fmt.Println(strings.Repeat("=", 60))

	for _, severity := range []models.Severity{models.SeverityError, models.SeverityWarning, models.SeverityInfo} {
		if summary.BySeverity[severity] == 0 {
			continue
		}
		fmt.Printf("\n%s (%d):\n", strings.ToUpper(string(severity)), summary.BySeverity[severity])
		for _, w := range warnings {
			if w.Severity != severity {
				continue
			}
			fmt.Printf("  [%s] %s\n", w.Category, w.Message)
		}
	}

	fmt.Println("\nBY CATEGORY")
	for _, category := range detector.SortedCategories(summary) {
		fmt.Printf("  %-20s %d\n", category, summary.ByCategory[category])
	}

	fmt.Printf("\nTotal warnings: %d\n", summary.Total)
	if summary.HasBlockers {
		fmt.Printf("❌ %d blocking error(s) found - fix these before importing\n", summary.Errors)
	} else {
		fmt.Println("✅ No blocking errors found")
	}
	fmt.Println(strings.Repeat("=", 60))
}

// PrintMatchReport prints per-organization match outcomes and the tally
func PrintMatchReport(mapping map[string]models.MatchResult, stats map[string]int) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("ORGANIZATION MATCH REPORT")
	fmt.Println(strings.Repeat("=", 60))

	for name, result := range mapping {
		if result.Status == models.MatchStatusMatched {
			fmt.Printf("  %-40s -> %s (via %s)\n", name, result.UUID, result.MatchType)
		} else {
			fmt.Printf("  %-40s -> will be created\n", name)
		}
	}

	fmt.Printf("\nMatched by itglue_id: %d\n", stats["matched_by_itglue_id"])
	fmt.Printf("Matched by name:      %d\n", stats["matched_by_name"])
	fmt.Printf("Need creation:        %d\n", stats["needs_creation"])
	fmt.Println(strings.Repeat("=", 60))
}
