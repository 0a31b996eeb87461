package models

// FieldType represents the type of a custom asset field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextbox  FieldType = "textbox"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeHeader   FieldType = "header"
	FieldTypePassword FieldType = "password"
	FieldTypeTOTP     FieldType = "totp"
)

// FieldDefinition represents the schema of one custom asset field
type FieldDefinition struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required"`
	ShowInList bool      `json:"show_in_list"`
	Options    []string  `json:"options,omitempty"`
}

// EntityType represents one of the fixed entity kinds tracked during a migration
type EntityType string

const (
	EntityOrganization      EntityType = "organization"
	EntityConfiguration     EntityType = "configuration"
	EntityDocument          EntityType = "document"
	EntityPassword          EntityType = "password"
	EntityLocation          EntityType = "location"
	EntityCustomAsset       EntityType = "custom_asset"
	EntityCustomAssetType   EntityType = "custom_asset_type"
	EntityConfigurationType EntityType = "configuration_type"
)

// AllEntityTypes returns the fixed set of entity types in a stable order
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityOrganization,
		EntityConfiguration,
		EntityDocument,
		EntityPassword,
		EntityLocation,
		EntityCustomAsset,
		EntityCustomAssetType,
		EntityConfigurationType,
	}
}

// IsValid reports whether the entity type is one of the fixed kinds
func (et EntityType) IsValid() bool {
	switch et {
	case EntityOrganization, EntityConfiguration, EntityDocument,
		EntityPassword, EntityLocation, EntityCustomAsset,
		EntityCustomAssetType, EntityConfigurationType:
		return true
	}
	return false
}

// MatchStatus represents the outcome of matching one source organization
type MatchStatus string

const (
	MatchStatusMatched MatchStatus = "matched"
	MatchStatusCreate  MatchStatus = "create"
)

// MatchType represents how a matched organization was found
type MatchType string

const (
	MatchTypeITGlueID MatchType = "itglue_id"
	MatchTypeName     MatchType = "name"
)

// MatchResult describes the outcome of reconciling one source organization
// against the existing target organizations. UUID and MatchType are set
// exactly when Status is MatchStatusMatched.
type MatchResult struct {
	Status    MatchStatus
	UUID      string
	MatchType MatchType
}

// Matched builds a MatchResult for an organization found in the target system
func Matched(uuid string, matchType MatchType) MatchResult {
	return MatchResult{Status: MatchStatusMatched, UUID: uuid, MatchType: matchType}
}

// NeedsCreation builds a MatchResult for an organization that must be created
func NeedsCreation() MatchResult {
	return MatchResult{Status: MatchStatusCreate}
}

// Category classifies a detected warning
type Category string

const (
	CategoryMissingReference Category = "missing_reference"
	CategoryDuplicate        Category = "duplicate"
	CategoryUnknownType      Category = "unknown_type"
	CategoryEmptyValue       Category = "empty_value"
	CategoryDataQuality      Category = "data_quality"
)

// Severity classifies how serious a warning is
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning represents one issue detected in the parsed export data
type Warning struct {
	Category   Category
	Severity   Severity
	Message    string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// ToMap serializes the warning to a plain map, omitting unset optional fields
func (w Warning) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"category": string(w.Category),
		"severity": string(w.Severity),
		"message":  w.Message,
	}
	if w.EntityType != "" {
		m["entity_type"] = w.EntityType
	}
	if w.EntityID != "" {
		m["entity_id"] = w.EntityID
	}
	if w.Details != nil {
		m["details"] = w.Details
	}
	return m
}

// OrgMetadata carries migration bookkeeping attached to a target organization
type OrgMetadata struct {
	ITGlueID string `json:"itglue_id"`
}

// TargetOrg represents an organization already present in the target system,
// shaped like the target API's organization list response
type TargetOrg struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Metadata OrgMetadata `json:"metadata"`
}

// OrgAttributes carries the attributes object of an IT Glue organization resource
type OrgAttributes struct {
	Name string `json:"name"`
}

// SourceOrg represents an organization from the IT Glue export,
// shaped like the source API's JSON:API organization resource
type SourceOrg struct {
	ID         string        `json:"id"`
	Attributes OrgAttributes `json:"attributes"`
}

// Organization is a parsed organization record from the export
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Configuration is a parsed configuration record from the export
type Configuration struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document is a parsed document record from the export
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Location is a parsed location record from the export
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Password is a parsed password record from the export. ResourceType and
// ResourceID point at the entity the password is attached to, when any.
type Password struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

// CustomAssetType is a parsed flexible asset type with its field schema
type CustomAssetType struct {
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// CustomAsset is a parsed flexible asset instance. Traits maps field keys
// to their raw string values.
type CustomAsset struct {
	ID       string            `json:"id"`
	TypeName string            `json:"type_name"`
	Name     string            `json:"name"`
	Traits   map[string]string `json:"traits"`
}

// ParsedData aggregates everything parsed from one export, ready for
// warning detection. It is a pure container populated by the export loader.
type ParsedData struct {
	Organizations    []Organization
	Configurations   []Configuration
	Documents        []Document
	Locations        []Location
	Passwords        []Password
	CustomAssetTypes []CustomAssetType
	CustomAssets     []CustomAsset
}
