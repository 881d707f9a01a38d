package openapi

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exampleUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (exampleUser) OpenAPIExample() any {
	return exampleUser{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
}

func TestGeneratePrimitives(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantType   string
		wantFormat string
	}{
		{"bool", true, "boolean", ""},
		{"int", 42, "integer", ""},
		{"int64", int64(42), "integer", ""},
		{"uint", uint(42), "integer", ""},
		{"float64", 4.2, "number", ""},
		{"string", "hello", "string", ""},
		{"bytes", []byte("raw"), "string", "byte"},
		{"time", time.Time{}, "string", "date-time"},
		{"uuid", uuid.UUID{}, "string", "uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSchemaGenerator()
			schema := g.Generate(tt.value)
			require.NotNil(t, schema)
			assert.Equal(t, tt.wantType, schema.Type)
			assert.Equal(t, tt.wantFormat, schema.Format)
			assert.Empty(t, g.Schemas(), "scalars must not become components")
		})
	}
}

func TestGenerateStruct(t *testing.T) {
	type address struct {
		Street string `json:"street"`
		City   string `json:"city,omitempty"`
	}

	type person struct {
		Name    string    `json:"name"`
		Age     int       `json:"age,omitempty"`
		Home    address   `json:"home"`
		Aliases []string  `json:"aliases,omitempty"`
		Hidden  string    `json:"-"`
		private string
		Born    time.Time `json:"born"`
	}

	t.Run("named struct becomes component ref", func(t *testing.T) {
		g := NewSchemaGenerator()
		schema := g.Generate(person{})
		require.NotNil(t, schema)
		assert.Equal(t, "#/components/schemas/person", schema.Ref)

		component := g.Schemas()["person"]
		require.NotNil(t, component)
		assert.Equal(t, "object", component.Type)
	})

	t.Run("fields and required list", func(t *testing.T) {
		g := NewSchemaGenerator()
		g.Generate(person{})

		component := g.Schemas()["person"]
		require.NotNil(t, component)

		assert.Contains(t, component.Properties, "name")
		assert.Contains(t, component.Properties, "age")
		assert.Contains(t, component.Properties, "home")
		assert.Contains(t, component.Properties, "aliases")
		assert.Contains(t, component.Properties, "born")
		assert.NotContains(t, component.Properties, "Hidden")
		assert.NotContains(t, component.Properties, "private")

		assert.ElementsMatch(t, []string{"name", "home", "born"}, component.Required)
	})

	t.Run("nested named struct becomes its own component", func(t *testing.T) {
		g := NewSchemaGenerator()
		g.Generate(person{})

		component := g.Schemas()["person"]
		require.NotNil(t, component)
		assert.Equal(t, "#/components/schemas/address", component.Properties["home"].Ref)
		assert.Contains(t, g.Schemas(), "address")
	})

	t.Run("time field is inline string", func(t *testing.T) {
		g := NewSchemaGenerator()
		g.Generate(person{})

		born := g.Schemas()["person"].Properties["born"]
		require.NotNil(t, born)
		assert.Equal(t, "string", born.Type)
		assert.Equal(t, "date-time", born.Format)
		assert.NotContains(t, g.Schemas(), "Time")
	})
}

func TestGeneratePointers(t *testing.T) {
	type note struct {
		Text string `json:"text"`
	}

	t.Run("pointer scalar is nullable", func(t *testing.T) {
		g := NewSchemaGenerator()
		schema := g.Generate(struct {
			Count *int `json:"count"`
		}{})
		count := schema.Properties["count"]
		require.NotNil(t, count)
		assert.Equal(t, "integer", count.Type)
		assert.True(t, count.Nullable)
	})

	t.Run("pointer to named struct uses allOf wrapper", func(t *testing.T) {
		g := NewSchemaGenerator()
		schema := g.Generate(struct {
			Note *note `json:"note"`
		}{})

		wrapped := schema.Properties["note"]
		require.NotNil(t, wrapped)
		assert.True(t, wrapped.Nullable)
		require.Len(t, wrapped.AllOf, 1)
		assert.Equal(t, "#/components/schemas/note", wrapped.AllOf[0].Ref)
	})
}

func TestGenerateEmbedded(t *testing.T) {
	type base struct {
		ID string `json:"id"`
	}

	t.Run("embedded struct inlined", func(t *testing.T) {
		g := NewSchemaGenerator()
		schema := g.Generate(struct {
			base
			Name string `json:"name"`
		}{})

		assert.Contains(t, schema.Properties, "id")
		assert.Contains(t, schema.Properties, "name")
		assert.ElementsMatch(t, []string{"id", "name"}, schema.Required)
	})

	t.Run("pointer embedded fields optional", func(t *testing.T) {
		g := NewSchemaGenerator()
		schema := g.Generate(struct {
			*base
			Name string `json:"name"`
		}{})

		assert.Contains(t, schema.Properties, "id")
		assert.ElementsMatch(t, []string{"name"}, schema.Required)
	})
}

func TestGenerateMapsAndSlices(t *testing.T) {
	t.Run("string map", func(t *testing.T) {
		schema := NewSchemaGenerator().Generate(map[string]int{})
		require.NotNil(t, schema)
		assert.Equal(t, "object", schema.Type)
		require.NotNil(t, schema.AdditionalProperties)
		assert.Equal(t, "integer", schema.AdditionalProperties.Type)
	})

	t.Run("non-string key map is plain object", func(t *testing.T) {
		schema := NewSchemaGenerator().Generate(map[int]string{})
		require.NotNil(t, schema)
		assert.Equal(t, "object", schema.Type)
		assert.Nil(t, schema.AdditionalProperties)
	})

	t.Run("slice of named structs", func(t *testing.T) {
		type tag struct {
			Label string `json:"label"`
		}

		g := NewSchemaGenerator()
		schema := g.Generate([]tag{})
		require.NotNil(t, schema)
		assert.Equal(t, "array", schema.Type)
		assert.Equal(t, "#/components/schemas/tag", schema.Items.Ref)
	})
}

func TestOpenAPITag(t *testing.T) {
	type product struct {
		Name  string  `json:"name" openapi:"description=Product name,minLength=1,maxLength=120"`
		Price float64 `json:"price" openapi:"minimum=0,exclusiveMinimum,example=9.99"`
		State string  `json:"state" openapi:"enum=draft|published|archived"`
		Slug  string  `json:"slug" openapi:"pattern=^[a-z0-9-]+$"`
		Views int     `json:"views,omitempty" openapi:"readOnly"`
	}

	g := NewSchemaGenerator()
	g.Generate(product{})
	component := g.Schemas()["product"]
	require.NotNil(t, component)

	t.Run("description and length bounds", func(t *testing.T) {
		name := component.Properties["name"]
		assert.Equal(t, "Product name", name.Description)
		require.NotNil(t, name.MinLength)
		assert.Equal(t, 1, *name.MinLength)
		require.NotNil(t, name.MaxLength)
		assert.Equal(t, 120, *name.MaxLength)
	})

	t.Run("numeric bounds and typed example", func(t *testing.T) {
		price := component.Properties["price"]
		require.NotNil(t, price.Minimum)
		assert.Equal(t, 0.0, *price.Minimum)
		assert.True(t, price.ExclusiveMinimum)
		assert.Equal(t, 9.99, price.Example)
	})

	t.Run("enum", func(t *testing.T) {
		state := component.Properties["state"]
		assert.Equal(t, []any{"draft", "published", "archived"}, state.Enum)
	})

	t.Run("pattern", func(t *testing.T) {
		assert.Equal(t, "^[a-z0-9-]+$", component.Properties["slug"].Pattern)
	})

	t.Run("readOnly", func(t *testing.T) {
		assert.True(t, component.Properties["views"].ReadOnly)
	})
}

func TestJSONStringOption(t *testing.T) {
	type account struct {
		Balance int64 `json:"balance,string"`
	}

	g := NewSchemaGenerator()
	g.Generate(account{})
	component := g.Schemas()["account"]
	require.NotNil(t, component)
	assert.Equal(t, "string", component.Properties["balance"].Type)
}

func TestExampler(t *testing.T) {
	g := NewSchemaGenerator()
	g.Generate(exampleUser{})

	component := g.Schemas()["exampleUser"]
	require.NotNil(t, component)
	require.NotNil(t, component.Example)
	example, ok := component.Example.(exampleUser)
	require.True(t, ok)
	assert.Equal(t, "Alice", example.Name)
}

func TestSanitizeSchemaName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User", "User"},
		{"ResponseData[User]", "ResponseDataUser"},
		{"ResponseData[[]User]", "ResponseDataUserList"},
		{"ResponseData[github.com/foo/bar.User]", "ResponseDataUser"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeSchemaName(tt.in))
		})
	}
}
