package planner

import (
	"github.com/sirupsen/logrus"
	"github.com/yourbasic/graph"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// ImportPlanner decides the order in which entity kinds must be created in
// the target system so that nothing is created before what it references.
type ImportPlanner struct {
	Logger *logrus.Logger
}

// NewImportPlanner creates a new import planner
func NewImportPlanner(logger *logrus.Logger) *ImportPlanner {
	return &ImportPlanner{Logger: logger}
}

// dependencies maps each entity kind to the kinds it references. Passwords
// come last because they can be attached to nearly anything; type schemas
// come before their instances.
var dependencies = map[models.EntityType][]models.EntityType{
	models.EntityLocation:      {models.EntityOrganization},
	models.EntityDocument:      {models.EntityOrganization},
	models.EntityConfiguration: {models.EntityOrganization, models.EntityConfigurationType},
	models.EntityCustomAsset:   {models.EntityOrganization, models.EntityCustomAssetType},
	models.EntityPassword: {
		models.EntityOrganization,
		models.EntityConfiguration,
		models.EntityLocation,
		models.EntityDocument,
		models.EntityCustomAsset,
	},
}

// CreationOrder returns all entity kinds sorted so that every kind appears
// after everything it depends on
func (p *ImportPlanner) CreationOrder() []models.EntityType {
	types := models.AllEntityTypes()

	indexOf := make(map[models.EntityType]int, len(types))
	for i, et := range types {
		indexOf[et] = i
	}

	g := graph.New(len(types))
	for et, deps := range dependencies {
		for _, dep := range deps {
			g.Add(indexOf[dep], indexOf[et])
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		// The dependency table is static and acyclic; this is unreachable
		// unless the table is edited into a cycle.
		if p.Logger != nil {
			p.Logger.Warning("Entity dependency graph has a cycle, falling back to declaration order")
		}
		return types
	}

	ordered := make([]models.EntityType, 0, len(order))
	for _, idx := range order {
		ordered = append(ordered, types[idx])
	}
	return ordered
}

// DependenciesOf returns the entity kinds a given kind references
func (p *ImportPlanner) DependenciesOf(entityType models.EntityType) []models.EntityType {
	deps := dependencies[entityType]
	out := make([]models.EntityType, len(deps))
	copy(out, deps)
	return out
}
