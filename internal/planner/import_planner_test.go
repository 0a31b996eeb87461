package planner

import (
	"testing"

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

func indexOf(order []models.EntityType, et models.EntityType) int {
	for i, candidate := range order {
		if candidate == et {
			return i
		}
	}
	return -1
}

func TestCreationOrderCoversEveryEntityType(t *testing.T) {
	p := NewImportPlanner(testLogger())

	order := p.CreationOrder()
	require.Len(t, order, len(models.AllEntityTypes()))

	seen := make(map[models.EntityType]bool)
	for _, et := range order {
		assert.False(t, seen[et], "entity type %s appears twice", et)
		seen[et] = true
	}
}

func TestCreationOrderRespectsDependencies(t *testing.T) {
	p := NewImportPlanner(testLogger())
	order := p.CreationOrder()

	for et, deps := range dependencies {
		for _, dep := range deps {
			assert.Less(t, indexOf(order, dep), indexOf(order, et),
				"%s must be created before %s", dep, et)
		}
	}
}

func TestCreationOrderIsDeterministic(t *testing.T) {
	p := NewImportPlanner(testLogger())
	assert.Equal(t, p.CreationOrder(), p.CreationOrder())
}

func TestDependenciesOfReturnsCopy(t *testing.T) {
	p := NewImportPlanner(testLogger())

	deps := p.DependenciesOf(models.EntityConfiguration)
	require.NotEmpty(t, deps)
	deps[0] = models.EntityPassword

	assert.NotEqual(t, models.EntityPassword, p.DependenciesOf(models.EntityConfiguration)[0])
}
