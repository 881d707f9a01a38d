package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateUser struct {
	ID        uuid.UUID  `json:"id" openapi:"description=Unique user identifier"`
	Name      string     `json:"name" openapi:"minLength=1,maxLength=120"`
	Email     string     `json:"email" openapi:"format=email"`
	Role      string     `json:"role" openapi:"enum=admin|member|guest"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type validateUserCreate struct {
	Name  string `json:"name" openapi:"minLength=1"`
	Email string `json:"email" openapi:"format=email"`
}

type validateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TestDocumentValidates renders a representative document and runs it
// through an independent OpenAPI 3.0 validator.
func TestDocumentValidates(t *testing.T) {
	commonErrors := ResponseSet{
		"401": validateError{},
		"500": validateError{},
	}

	b := New("User Service", "2.3.0").
		Description("Manages user accounts.").
		AddServer("https://api.example.com/v1", "production").
		AddTag("users", "User management").
		AddSecurityScheme("bearerAuth", &SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		}).
		AddSecurity(SecurityRequirement{"bearerAuth": {}}).
		InferOperationIDs()

	b.Operation("/users", http.MethodGet, func(c *Components, opts *BuilderOptions) (*Operation, error) {
		return NewOperation().
			Name("listUsers").
			Summary("List users").
			Tags("users").
			Parameter(&Parameter{
				Name:   "limit",
				In:     "query",
				Schema: &Schema{Type: "integer", Format: "int32"},
			}).
			Response(200, []validateUser{}).
			MergeResponses(commonErrors).
			Build(c, opts)
	})

	b.Operation("/users", http.MethodPost, func(c *Components, opts *BuilderOptions) (*Operation, error) {
		return NewOperation().
			Name("createUser").
			Summary("Create a user").
			Tags("users").
			Request(validateUserCreate{}).
			Response(201, validateUser{}).
			Response(422, validateError{}).
			MergeResponses(commonErrors).
			Build(c, opts)
	})

	b.Operation("/users/:id", http.MethodGet, func(c *Components, opts *BuilderOptions) (*Operation, error) {
		return NewOperation().
			Name("getUser").
			Summary("Get a user").
			Tags("users").
			Response(200, validateUser{}).
			Response(404, validateError{}).
			MergeResponses(commonErrors).
			Build(c, opts)
	})

	b.Operation("/users/:id", http.MethodDelete, func(c *Components, opts *BuilderOptions) (*Operation, error) {
		return NewOperation().
			Name("deleteUser").
			Summary("Delete a user").
			Tags("users").
			Response(204, nil).
			Response(404, validateError{}).
			MergeResponses(commonErrors).
			Build(c, opts)
	})

	doc, err := b.Build()
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	loader := openapi3.NewLoader()
	parsed, err := loader.LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, parsed.Validate(context.Background()))

	assert.Equal(t, "User Service", parsed.Info.Title)
	assert.NotNil(t, parsed.Paths.Find("/users/{id}"))
	assert.Contains(t, parsed.Components.Schemas, "validateUser")
}
