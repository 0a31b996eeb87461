package detector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

const maxDocumentContentBytes = 1024 * 1024

const structuredDataPrefix = "StructuredData::"

// WarningDetector runs a battery of integrity checks over fully parsed
// export data before any destructive write happens. Every check degrades to
// a Warning; the detector itself never fails.
type WarningDetector struct {
	Logger *logrus.Logger
}

// NewWarningDetector creates a new warning detector
func NewWarningDetector(logger *logrus.Logger) *WarningDetector {
	return &WarningDetector{Logger: logger}
}

// exportIndex holds the ID sets the reference checks resolve against
type exportIndex struct {
	organizations  map[string]bool
	configurations map[string]bool
	locations      map[string]bool
	documents      map[string]bool
	assetsBySlug   map[string]map[string]bool
	allAssets      map[string]bool
}

// DetectAll runs every check pass and concatenates the results. The passes
// are independent and order-insensitive; results are not deduplicated.
func (d *WarningDetector) DetectAll(data models.ParsedData) []models.Warning {
	index := buildIndex(data)

	var warnings []models.Warning
	warnings = append(warnings, d.detectMissingReferences(data, index)...)
	warnings = append(warnings, d.detectUnknownTypes(data, index)...)
	warnings = append(warnings, d.detectDuplicates(data)...)
	warnings = append(warnings, d.detectEmptyValues(data)...)
	warnings = append(warnings, d.detectDataQuality(data)...)

	if d.Logger != nil {
		d.Logger.Infof("Detection finished with %d warning(s)", len(warnings))
	}
	return warnings
}

func buildIndex(data models.ParsedData) exportIndex {
	index := exportIndex{
		organizations:  make(map[string]bool),
		configurations: make(map[string]bool),
		locations:      make(map[string]bool),
		documents:      make(map[string]bool),
		assetsBySlug:   make(map[string]map[string]bool),
		allAssets:      make(map[string]bool),
	}

	for _, org := range data.Organizations {
		index.organizations[org.ID] = true
	}
	for _, cfg := range data.Configurations {
		index.configurations[cfg.ID] = true
	}
	for _, loc := range data.Locations {
		index.locations[loc.ID] = true
	}
	for _, doc := range data.Documents {
		index.documents[doc.ID] = true
	}
	for _, at := range data.CustomAssetTypes {
		slug := slugify(at.Name)
		if index.assetsBySlug[slug] == nil {
			index.assetsBySlug[slug] = make(map[string]bool)
		}
	}
	for _, asset := range data.CustomAssets {
		slug := slugify(asset.TypeName)
		if index.assetsBySlug[slug] == nil {
			index.assetsBySlug[slug] = make(map[string]bool)
		}
		index.assetsBySlug[slug][asset.ID] = true
		index.allAssets[asset.ID] = true
	}

	return index
}

// detectMissingReferences flags passwords whose resource reference does not
// resolve anywhere in the export. StructuredData cell and row references are
// exempt; they cannot be resolved from a flat export.
func (d *WarningDetector) detectMissingReferences(data models.ParsedData, index exportIndex) []models.Warning {
	var warnings []models.Warning

	for _, pw := range data.Passwords {
		if pw.ResourceID == "" {
			continue
		}

		resolved := false
		checked := true

		switch {
		case pw.ResourceType == "Configuration":
			resolved = index.configurations[pw.ResourceID]
		case pw.ResourceType == "Location":
			resolved = index.locations[pw.ResourceID]
		case pw.ResourceType == "Organization":
			resolved = index.organizations[pw.ResourceID]
		case pw.ResourceType == "Document":
			resolved = index.documents[pw.ResourceID]
		case pw.ResourceType == structuredDataPrefix+"Cell", pw.ResourceType == structuredDataPrefix+"Row":
			// Cell/row addressing is internal to IT Glue tables
			checked = false
		case strings.HasPrefix(pw.ResourceType, structuredDataPrefix):
			slug := slugify(strings.TrimPrefix(pw.ResourceType, structuredDataPrefix))
			if assets, ok := index.assetsBySlug[slug]; ok {
				resolved = assets[pw.ResourceID]
			} else {
				resolved = index.allAssets[pw.ResourceID]
			}
		case pw.ResourceType == "":
			resolved = index.organizations[pw.ResourceID] ||
				index.configurations[pw.ResourceID] ||
				index.locations[pw.ResourceID] ||
				index.documents[pw.ResourceID] ||
				index.allAssets[pw.ResourceID]
		default:
			// Unrecognized resource types are reported by the unknown-type pass
			checked = false
		}

		if checked && !resolved {
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryMissingReference,
				Severity:   models.SeverityWarning,
				Message:    fmt.Sprintf("Password %s references %s %s which is not in the export", pw.ID, describeResourceType(pw.ResourceType), pw.ResourceID),
				EntityType: "password",
				EntityID:   pw.ID,
				Details: map[string]interface{}{
					"resource_type": pw.ResourceType,
					"resource_id":   pw.ResourceID,
				},
			})
		}
	}

	return warnings
}

// detectUnknownTypes flags password resource types the migration does not
// recognize at all
func (d *WarningDetector) detectUnknownTypes(data models.ParsedData, index exportIndex) []models.Warning {
	knownTypes := map[string]bool{
		"Configuration":              true,
		"Location":                   true,
		"Organization":               true,
		"Document":                   true,
		structuredDataPrefix + "Cell": true,
		structuredDataPrefix + "Row":  true,
	}

	var warnings []models.Warning
	for _, pw := range data.Passwords {
		if pw.ResourceType == "" || knownTypes[pw.ResourceType] {
			continue
		}
		if strings.HasPrefix(pw.ResourceType, structuredDataPrefix) {
			slug := slugify(strings.TrimPrefix(pw.ResourceType, structuredDataPrefix))
			if _, ok := index.assetsBySlug[slug]; ok {
				continue
			}
		}
		warnings = append(warnings, models.Warning{
			Category:   models.CategoryUnknownType,
			Severity:   models.SeverityInfo,
			Message:    fmt.Sprintf("Password %s has unknown resource type %q", pw.ID, pw.ResourceType),
			EntityType: "password",
			EntityID:   pw.ID,
			Details: map[string]interface{}{
				"resource_type": pw.ResourceType,
			},
		})
	}
	return warnings
}

// detectDuplicates flags organizations sharing a case-insensitive name.
// Custom assets may legitimately repeat names within an organization, so
// they are exempt.
func (d *WarningDetector) detectDuplicates(data models.ParsedData) []models.Warning {
	groups := make(map[string][]models.Organization)
	var order []string

	for _, org := range data.Organizations {
		if strings.TrimSpace(org.Name) == "" {
			continue
		}
		key := foldName(org.Name)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], org)
	}

	var warnings []models.Warning
	for _, key := range order {
		orgs := groups[key]
		if len(orgs) < 2 {
			continue
		}
		ids := make([]string, 0, len(orgs))
		for _, org := range orgs {
			ids = append(ids, org.ID)
		}
		warnings = append(warnings, models.Warning{
			Category:   models.CategoryDuplicate,
			Severity:   models.SeverityWarning,
			Message:    fmt.Sprintf("%d organizations share the name %q (ids: %s)", len(orgs), orgs[0].Name, strings.Join(ids, ", ")),
			EntityType: "organization",
			Details: map[string]interface{}{
				"name": orgs[0].Name,
				"ids":  ids,
			},
		})
	}
	return warnings
}

// detectEmptyValues flags records missing values the migration cares about.
// Empty organization and configuration names block the import; an empty
// password value is merely notable.
func (d *WarningDetector) detectEmptyValues(data models.ParsedData) []models.Warning {
	var warnings []models.Warning

	for _, pw := range data.Passwords {
		if pw.Password == "" {
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryEmptyValue,
				Severity:   models.SeverityInfo,
				Message:    fmt.Sprintf("Password %s has an empty password value", pw.ID),
				EntityType: "password",
				EntityID:   pw.ID,
			})
		}
	}
	for _, org := range data.Organizations {
		if org.Name == "" {
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryEmptyValue,
				Severity:   models.SeverityError,
				Message:    fmt.Sprintf("Organization %s has an empty name", org.ID),
				EntityType: "organization",
				EntityID:   org.ID,
			})
		}
	}
	for _, cfg := range data.Configurations {
		if cfg.Name == "" {
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryEmptyValue,
				Severity:   models.SeverityError,
				Message:    fmt.Sprintf("Configuration %s has an empty name", cfg.ID),
				EntityType: "configuration",
				EntityID:   cfg.ID,
			})
		}
	}

	return warnings
}

// detectDataQuality flags oversized documents and assets with most of their
// required fields empty
func (d *WarningDetector) detectDataQuality(data models.ParsedData) []models.Warning {
	var warnings []models.Warning

	for _, doc := range data.Documents {
		if len(doc.Content) > maxDocumentContentBytes {
			sizeMB := float64(len(doc.Content)) / float64(maxDocumentContentBytes)
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryDataQuality,
				Severity:   models.SeverityWarning,
				Message:    fmt.Sprintf("Document %s content is %.2f MB", doc.ID, sizeMB),
				EntityType: "document",
				EntityID:   doc.ID,
				Details: map[string]interface{}{
					"size_bytes": len(doc.Content),
				},
			})
		}
	}

	requiredByType := make(map[string][]string)
	for _, at := range data.CustomAssetTypes {
		var required []string
		for _, field := range at.Fields {
			if field.Required {
				required = append(required, field.Key)
			}
		}
		if len(required) > 0 {
			requiredByType[at.Name] = required
		}
	}

	for _, asset := range data.CustomAssets {
		required, ok := requiredByType[asset.TypeName]
		if !ok {
			continue
		}
		var empty []string
		for _, key := range required {
			if strings.TrimSpace(asset.Traits[key]) == "" {
				empty = append(empty, key)
			}
		}
		if len(empty) > 1 && len(empty)*2 > len(required) {
			warnings = append(warnings, models.Warning{
				Category:   models.CategoryDataQuality,
				Severity:   models.SeverityInfo,
				Message:    fmt.Sprintf("Asset %s (%s) has empty required fields: %s", asset.ID, asset.TypeName, strings.Join(empty, ", ")),
				EntityType: "custom_asset",
				EntityID:   asset.ID,
				Details: map[string]interface{}{
					"type_name":    asset.TypeName,
					"empty_fields": empty,
				},
			})
		}
	}

	return warnings
}

// Summary aggregates a warning list for reporting. HasBlockers is the
// pre-flight gate: callers must not proceed with a destructive import while
// it is true.
type Summary struct {
	Total       int                       `json:"total"`
	BySeverity  map[models.Severity]int   `json:"by_severity"`
	ByCategory  map[models.Category]int   `json:"by_category"`
	Errors      int                       `json:"errors"`
	HasBlockers bool                      `json:"has_blockers"`
}

// Summarize tallies warnings by severity and category. Severity keys are
// always present; category keys appear only when seen.
func Summarize(warnings []models.Warning) Summary {
	summary := Summary{
		Total: len(warnings),
		BySeverity: map[models.Severity]int{
			models.SeverityInfo:    0,
			models.SeverityWarning: 0,
			models.SeverityError:   0,
		},
		ByCategory: make(map[models.Category]int),
	}

	for _, w := range warnings {
		summary.BySeverity[w.Severity]++
		summary.ByCategory[w.Category]++
		if w.Severity == models.SeverityError {
			summary.Errors++
		}
	}

	summary.HasBlockers = summary.Errors > 0
	return summary
}

// describeResourceType renders a password resource type for warning
// messages; an empty type reads as a generic resource
func describeResourceType(resourceType string) string {
	if resourceType == "" {
		return "resource"
	}
	return resourceType
}

// slugify turns a custom asset type name into its lookup slug
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// foldName normalizes an organization name for case-insensitive grouping
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// SortedCategories returns the categories present in a summary in a stable
// order, for deterministic report rendering
func SortedCategories(summary Summary) []models.Category {
	cats := make([]models.Category, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
