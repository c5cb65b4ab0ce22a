package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	first := NewBaseEntity()
	second := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	assert.Equal(t, first.ID, first.GetID())
}

func TestNewBaseAggregateRoot(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.GetVersion())

	root.IncrementVersion()
	assert.Equal(t, 2, root.GetVersion())

	event := NewBaseDomainEvent("something.happened", "aggregate", root.ID, uuid.New())
	root.AddDomainEvent(&event)
	assert.Len(t, root.GetDomainEvents(), 1)
	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}

func TestDefaultFilter(t *testing.T) {
	filter := DefaultFilter()
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)
	assert.Equal(t, "created_at", filter.OrderBy)
	assert.Equal(t, "desc", filter.OrderDir)
	assert.NotNil(t, filter.Filters)
}
