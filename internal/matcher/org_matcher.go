package matcher

import (
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// OrgMatcher reconciles IT Glue organizations against organizations that
// already exist in the target system. It is constructed once with the full
// target list, then consulted per source organization.
type OrgMatcher struct {
	itglueIndex map[string]string
	nameIndex   map[string][]string
	matched     map[string]models.MatchResult
	stats       map[string]int
	Logger      *logrus.Logger
}

// NewOrgMatcher builds the lookup indices from the existing target
// organizations. Entries without an ID are skipped with a warning; partial
// target data must never abort the matcher.
func NewOrgMatcher(existing []models.TargetOrg, logger *logrus.Logger) *OrgMatcher {
	m := &OrgMatcher{
		itglueIndex: make(map[string]string),
		nameIndex:   make(map[string][]string),
		matched:     make(map[string]models.MatchResult),
		stats: map[string]int{
			"matched_by_itglue_id": 0,
			"matched_by_name":      0,
			"needs_creation":       0,
		},
		Logger: logger,
	}

	for _, org := range existing {
		if org.ID == "" {
			m.logWarningf("Skipping existing organization without an id (name=%q)", org.Name)
			continue
		}

		if itglueID := org.Metadata.ITGlueID; itglueID != "" {
			if prev, ok := m.itglueIndex[itglueID]; ok {
				m.logWarningf("Duplicate itglue_id %q on organizations %s and %s, keeping the last", itglueID, prev, org.ID)
			}
			m.itglueIndex[itglueID] = org.ID
		}

		if org.Name != "" {
			key := foldName(org.Name)
			m.nameIndex[key] = append(m.nameIndex[key], org.ID)
		}
	}

	return m
}

// Match reconciles one source organization. An itglue_id match always wins
// over a simultaneous name match; anything unmatched needs creation.
func (m *OrgMatcher) Match(src models.SourceOrg) models.MatchResult {
	name := strings.TrimSpace(src.Attributes.Name)

	if src.ID != "" {
		if targetID, ok := m.itglueIndex[src.ID]; ok {
			result := models.Matched(targetID, models.MatchTypeITGlueID)
			m.record(src, name, result, "matched_by_itglue_id")
			return result
		}
	}

	if name != "" {
		if candidates, ok := m.nameIndex[foldName(name)]; ok && len(candidates) > 0 {
			if len(candidates) > 1 {
				m.logWarningf("Organization name %q matches %d existing organizations, using the first", name, len(candidates))
			}
			result := models.Matched(candidates[0], models.MatchTypeName)
			m.record(src, name, result, "matched_by_name")
			return result
		}
	}

	if name == "" {
		m.logWarningf("Source organization %q has no usable name; it will be created with an empty name", src.ID)
	}
	result := models.NeedsCreation()
	m.record(src, name, result, "needs_creation")
	return result
}

// GetMapping returns a copy of all match results seen so far, keyed by
// source organization name with the source id as fallback. Two nameless
// organizations sharing a fallback key overwrite each other, last one wins;
// downstream report rendering depends on that.
func (m *OrgMatcher) GetMapping() map[string]models.MatchResult {
	out := make(map[string]models.MatchResult, len(m.matched))
	for k, v := range m.matched {
		out[k] = v
	}
	return out
}

// GetStats returns the tally of match outcomes for reporting
func (m *OrgMatcher) GetStats() map[string]int {
	out := make(map[string]int, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out
}

func (m *OrgMatcher) record(src models.SourceOrg, name string, result models.MatchResult, stat string) {
	key := name
	if key == "" {
		key = src.ID
	}
	m.matched[key] = result
	m.stats[stat]++
}

func (m *OrgMatcher) logWarningf(format string, args ...interface{}) {
	if m.Logger != nil {
		m.Logger.Warningf(format, args...)
	}
}

// foldName normalizes an organization name for case-insensitive lookup
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
