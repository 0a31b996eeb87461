package idmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// ledgerVersion is the on-disk format version. Any other value is a hard
// load failure.
const ledgerVersion = 1

// InvalidEntityTypeError is returned when an operation names an entity type
// outside the fixed set
type InvalidEntityTypeError struct {
	EntityType models.EntityType
}

func (e *InvalidEntityTypeError) Error() string {
	return fmt.Sprintf("invalid entity type: %q", string(e.EntityType))
}

// ledgerFile is the JSON document persisted to disk
type ledgerFile struct {
	Version  *int                         `json:"version"`
	Mappings map[string]map[string]string `json:"mappings"`
}

// IdMapper is a durable ledger mapping IT Glue IDs to target-system UUIDs,
// one bucket per entity type. Saving and reloading the ledger is what lets
// an interrupted migration resume without recreating entities.
type IdMapper struct {
	mappings map[models.EntityType]map[string]string
	Logger   *logrus.Logger
}

// NewIdMapper creates an empty mapper with every entity-type bucket present
func NewIdMapper(logger *logrus.Logger) *IdMapper {
	m := &IdMapper{
		mappings: make(map[models.EntityType]map[string]string),
		Logger:   logger,
	}
	for _, et := range models.AllEntityTypes() {
		m.mappings[et] = make(map[string]string)
	}
	return m
}

// Add records a mapping from an IT Glue ID to a target UUID. Adding the
// same ID twice overwrites silently, which is how a resumed run refreshes
// its state.
func (m *IdMapper) Add(entityType models.EntityType, itglueID, targetUUID string) error {
	if !entityType.IsValid() {
		return &InvalidEntityTypeError{EntityType: entityType}
	}
	if itglueID == "" {
		return fmt.Errorf("itglue id must not be empty")
	}
	if targetUUID == "" {
		return fmt.Errorf("target uuid must not be empty")
	}

	if _, err := uuid.Parse(targetUUID); err != nil && m.Logger != nil {
		m.Logger.Warningf("Target ID %q for %s %s is not a well-formed UUID", targetUUID, entityType, itglueID)
	}

	m.mappings[entityType][itglueID] = targetUUID
	return nil
}

// Get returns the target UUID for an IT Glue ID, or the empty string when
// the ID has not been mapped
func (m *IdMapper) Get(entityType models.EntityType, itglueID string) (string, error) {
	if !entityType.IsValid() {
		return "", &InvalidEntityTypeError{EntityType: entityType}
	}
	return m.mappings[entityType][itglueID], nil
}

// Has reports whether an IT Glue ID has been mapped
func (m *IdMapper) Has(entityType models.EntityType, itglueID string) (bool, error) {
	if !entityType.IsValid() {
		return false, &InvalidEntityTypeError{EntityType: entityType}
	}
	_, ok := m.mappings[entityType][itglueID]
	return ok, nil
}

// GetAll returns a copy of one entity type's mappings. Mutating the result
// never affects the mapper.
func (m *IdMapper) GetAll(entityType models.EntityType) (map[string]string, error) {
	if !entityType.IsValid() {
		return nil, &InvalidEntityTypeError{EntityType: entityType}
	}
	out := make(map[string]string, len(m.mappings[entityType]))
	for k, v := range m.mappings[entityType] {
		out[k] = v
	}
	return out, nil
}

// Save writes the ledger to path as indented, key-sorted JSON, creating
// parent directories as needed
func (m *IdMapper) Save(path string) error {
	doc := ledgerFile{
		Version:  versionPtr(),
		Mappings: make(map[string]map[string]string, len(m.mappings)),
	}
	for et, bucket := range m.mappings {
		copied := make(map[string]string, len(bucket))
		for k, v := range bucket {
			copied[k] = v
		}
		doc.Mappings[string(et)] = copied
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing id map: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating id map directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing id map: %w", err)
	}

	if m.Logger != nil {
		m.Logger.Infof("Saved %d mapping(s) to %s", m.TotalCount(), path)
	}
	return nil
}

// Load reads a ledger file and merges it into the mapper key by key, with
// loaded entries winning on conflict. The merge, rather than a destructive
// replace, is what makes interrupted migrations safely resumable. Entity
// types the current version does not know are skipped.
func (m *IdMapper) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc ledgerFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing id map %s: %w", path, err)
	}
	if doc.Version == nil || *doc.Version != ledgerVersion {
		return fmt.Errorf("id map %s: unsupported version %v", path, formatVersion(doc.Version))
	}
	if doc.Mappings == nil {
		return fmt.Errorf("id map %s: missing mappings object", path)
	}

	loaded := 0
	for rawType, bucket := range doc.Mappings {
		et := models.EntityType(rawType)
		if !et.IsValid() {
			if m.Logger != nil {
				m.Logger.Debugf("Skipping unknown entity type %q in %s", rawType, path)
			}
			continue
		}
		for k, v := range bucket {
			m.mappings[et][k] = v
			loaded++
		}
	}

	if m.Logger != nil {
		m.Logger.Infof("Loaded %d mapping(s) from %s", loaded, path)
	}
	return nil
}

// Clear empties every bucket while keeping the buckets themselves
func (m *IdMapper) Clear() {
	for _, et := range models.AllEntityTypes() {
		m.mappings[et] = make(map[string]string)
	}
}

// Stats returns the number of mappings per entity type
func (m *IdMapper) Stats() map[models.EntityType]int {
	stats := make(map[models.EntityType]int, len(m.mappings))
	for et, bucket := range m.mappings {
		stats[et] = len(bucket)
	}
	return stats
}

// TotalCount returns the number of mappings across all entity types
func (m *IdMapper) TotalCount() int {
	total := 0
	for _, bucket := range m.mappings {
		total += len(bucket)
	}
	return total
}

func versionPtr() *int {
	v := ledgerVersion
	return &v
}

func formatVersion(v *int) interface{} {
	if v == nil {
		return "missing"
	}
	return *v
}
