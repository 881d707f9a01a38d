package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentsSchemaFor(t *testing.T) {
	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("named type yields ref", func(t *testing.T) {
		c := NewComponents()
		schema := c.SchemaFor(user{})
		require.NotNil(t, schema)
		assert.Equal(t, "#/components/schemas/user", schema.Ref)
	})

	t.Run("repeated use registers once", func(t *testing.T) {
		c := NewComponents()
		first := c.SchemaFor(user{})
		second := c.SchemaFor(user{})
		assert.Equal(t, first.Ref, second.Ref)

		components, err := c.Finalize()
		require.NoError(t, err)
		require.NotNil(t, components)
		assert.Len(t, components.Schemas, 1)
	})

	t.Run("slice wraps ref in array", func(t *testing.T) {
		c := NewComponents()
		schema := c.SchemaFor([]user{})
		require.NotNil(t, schema)
		assert.Equal(t, "array", schema.Type)
		require.NotNil(t, schema.Items)
		assert.Equal(t, "#/components/schemas/user", schema.Items.Ref)
	})
}

func TestComponentsRegisterSchema(t *testing.T) {
	t.Run("manual registration", func(t *testing.T) {
		c := NewComponents()
		err := c.RegisterSchema("Money", &Schema{Type: "string", Pattern: `^\d+\.\d{2}$`})
		require.NoError(t, err)

		components, err := c.Finalize()
		require.NoError(t, err)
		assert.Contains(t, components.Schemas, "Money")
	})

	t.Run("identical re-registration is idempotent", func(t *testing.T) {
		c := NewComponents()
		require.NoError(t, c.RegisterSchema("Money", &Schema{Type: "string"}))
		require.NoError(t, c.RegisterSchema("Money", &Schema{Type: "string"}))
	})

	t.Run("conflicting registration fails", func(t *testing.T) {
		c := NewComponents()
		require.NoError(t, c.RegisterSchema("Money", &Schema{Type: "string"}))

		err := c.RegisterSchema("Money", &Schema{Type: "number"})
		var conflict *SchemaConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Money", conflict.Name)
	})

	t.Run("manual name colliding with derived schema fails at finalize", func(t *testing.T) {
		type order struct {
			ID string `json:"id"`
		}

		c := NewComponents()
		c.SchemaFor(order{})
		require.NoError(t, c.RegisterSchema("order", &Schema{Type: "string"}))

		_, err := c.Finalize()
		var conflict *SchemaConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "order", conflict.Name)
	})
}

func TestComponentsFinalize(t *testing.T) {
	t.Run("empty registry yields nil", func(t *testing.T) {
		components, err := NewComponents().Finalize()
		require.NoError(t, err)
		assert.Nil(t, components)
	})

	t.Run("merges manual and derived schemas", func(t *testing.T) {
		type event struct {
			Kind string `json:"kind"`
		}

		c := NewComponents()
		c.SchemaFor(event{})
		require.NoError(t, c.RegisterSchema("Timestamp", &Schema{Type: "string", Format: "date-time"}))

		components, err := c.Finalize()
		require.NoError(t, err)
		assert.Contains(t, components.Schemas, "event")
		assert.Contains(t, components.Schemas, "Timestamp")
	})
}
