package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigmountainben/itglue-migrate/internal/detector"
	"github.com/bigmountainben/itglue-migrate/internal/export"
	"github.com/bigmountainben/itglue-migrate/internal/idmap"
	"github.com/bigmountainben/itglue-migrate/internal/inferrer"
	"github.com/bigmountainben/itglue-migrate/internal/matcher"
	"github.com/bigmountainben/itglue-migrate/internal/planner"
	"github.com/bigmountainben/itglue-migrate/internal/utils"
	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

func main() {
	var (
		envFile  string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "itglue-migrate",
		Short: "A toolkit for migrating IT Glue exports into custom assets",
		Long: `IT Glue Migration Toolkit

Infers custom asset field schemas from IT Glue exports, reconciles
organizations against the target system, and audits parsed data for
integrity problems before anything is written.`,
	}

	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	var (
		csvFile  string
		typeName string
		skipCols []string
	)
	inferCmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer a custom asset type schema from a CSV export",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)
			utils.LoadEnvironmentVariables(envFile, logger)

			columns, rows, err := export.ReadCSV(csvFile)
			if err != nil {
				logger.Errorf("Failed to read CSV: %v", err)
				os.Exit(1)
			}

			skip := make(map[string]bool, len(skipCols))
			for _, col := range skipCols {
				skip[col] = true
			}

			fieldInferrer := inferrer.NewFieldInferrer(logger)
			fields := fieldInferrer.InferSchema(columns, rows, skip)
			utils.PrintSchemaReport(typeName, fields)
		},
	}
	inferCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "Path to the CSV export")
	inferCmd.Flags().StringVarP(&typeName, "type-name", "t", "Imported Asset", "Name of the custom asset type")
	inferCmd.Flags().StringSliceVarP(&skipCols, "skip", "s", nil, "Columns to skip")
	inferCmd.MarkFlagRequired("csv")

	var (
		exportDir   string
		mappingFile string
	)
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a parsed export for integrity problems",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)
			utils.LoadEnvironmentVariables(envFile, logger)

			dir := exportDir
			if dir == "" {
				dir = utils.GetEnvDefault("ITGLUE_EXPORT_DIR", ".")
			}

			data, err := export.LoadParsedData(dir, logger)
			if err != nil {
				logger.Errorf("Failed to load export: %v", err)
				os.Exit(1)
			}

			warningDetector := detector.NewWarningDetector(logger)
			warnings := warningDetector.DetectAll(data)
			summary := detector.Summarize(warnings)
			utils.PrintWarningReport(warnings, summary)

			if mappingFile != "" {
				mapper := idmap.NewIdMapper(logger)
				if err := mapper.Load(mappingFile); err != nil {
					if os.IsNotExist(err) {
						logger.Infof("No mapping file at %s, this would be a fresh run", mappingFile)
					} else {
						logger.Errorf("Failed to load mapping file: %v", err)
						os.Exit(1)
					}
				} else {
					logger.Infof("Resume state: %d entities already migrated", mapper.TotalCount())
				}
			}

			if summary.HasBlockers {
				logger.Errorf("Found %d blocking error(s), refusing to proceed", summary.Errors)
				os.Exit(1)
			}
		},
	}
	auditCmd.Flags().StringVarP(&exportDir, "export-dir", "d", "", "Directory holding the parsed export JSON files")
	auditCmd.Flags().StringVarP(&mappingFile, "mapping-file", "m", "", "Path to the id mapping ledger")

	var (
		matchExportDir string
		orgsFile       string
	)
	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Match source organizations against existing target organizations",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)
			utils.LoadEnvironmentVariables(envFile, logger)

			raw, err := os.ReadFile(orgsFile)
			if err != nil {
				logger.Errorf("Failed to read target organizations: %v", err)
				os.Exit(1)
			}
			var existing []models.TargetOrg
			if err := json.Unmarshal(raw, &existing); err != nil {
				logger.Errorf("Failed to parse target organizations: %v", err)
				os.Exit(1)
			}

			data, err := export.LoadParsedData(matchExportDir, logger)
			if err != nil {
				logger.Errorf("Failed to load export: %v", err)
				os.Exit(1)
			}

			orgMatcher := matcher.NewOrgMatcher(existing, logger)
			for _, org := range data.Organizations {
				orgMatcher.Match(models.SourceOrg{
					ID:         org.ID,
					Attributes: models.OrgAttributes{Name: org.Name},
				})
			}

			utils.PrintMatchReport(orgMatcher.GetMapping(), orgMatcher.GetStats())
		},
	}
	matchCmd.Flags().StringVarP(&matchExportDir, "export-dir", "d", "", "Directory holding the parsed export JSON files")
	matchCmd.Flags().StringVarP(&orgsFile, "orgs-file", "o", "", "JSON file with the target system's organizations")
	matchCmd.MarkFlagRequired("orgs-file")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the order in which entity kinds will be created",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)

			importPlanner := planner.NewImportPlanner(logger)
			for i, entityType := range importPlanner.CreationOrder() {
				fmt.Printf("%2d. %s\n", i+1, entityType)
			}
		},
	}

	rootCmd.AddCommand(inferCmd, auditCmd, matchCmd, planCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
