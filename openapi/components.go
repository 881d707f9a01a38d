package openapi

import "reflect"

// Components is the schema registry shared by operation generators during a
// build. It owns a SchemaGenerator for type-derived schemas and holds
// manually registered named definitions (schemas and security schemes).
//
// Type-derived schemas are registered lazily, on first reference from a
// generator. Manual definitions are registered eagerly through the builder.
// No two distinct definitions may claim the same name; collisions surface
// as errors, never as silent overwrites.
type Components struct {
	gen             *SchemaGenerator
	schemas         map[string]*Schema
	securitySchemes map[string]*SecurityScheme
}

// NewComponents creates an empty registry.
func NewComponents() *Components {
	return &Components{
		gen:             NewSchemaGenerator(),
		schemas:         make(map[string]*Schema),
		securitySchemes: make(map[string]*SecurityScheme),
	}
}

// SchemaFor returns a schema for the given Go value. Named struct types are
// registered in the registry on first use and returned as a $ref; subsequent
// calls for the same type return a structurally identical schema keyed to
// the same name.
func (c *Components) SchemaFor(v any) *Schema {
	return c.gen.Generate(v)
}

// RegisterSchema adds a manually specified schema under the given name.
// Re-registering an identical definition is a no-op; registering a different
// definition under an existing name fails.
func (c *Components) RegisterSchema(name string, schema *Schema) error {
	if existing, ok := c.schemas[name]; ok {
		if reflect.DeepEqual(existing, schema) {
			return nil
		}
		return &SchemaConflictError{Name: name}
	}
	c.schemas[name] = schema
	return nil
}

// RegisterSecurityScheme adds a named security scheme definition.
// Follows the same idempotence and conflict rules as RegisterSchema.
func (c *Components) RegisterSecurityScheme(name string, scheme *SecurityScheme) error {
	if existing, ok := c.securitySchemes[name]; ok {
		if reflect.DeepEqual(existing, scheme) {
			return nil
		}
		return &SchemaConflictError{Name: name}
	}
	c.securitySchemes[name] = scheme
	return nil
}

// Finalize produces the document's Components Object from all type-derived
// and manually registered definitions. It fails if a type-derived schema and
// a manual one ended up under the same name with different content.
func (c *Components) Finalize() (*ComponentsObject, error) {
	schemas := make(map[string]*Schema, len(c.schemas)+len(c.gen.Schemas()))
	for name, schema := range c.schemas {
		schemas[name] = schema
	}
	for name, schema := range c.gen.Schemas() {
		if existing, ok := schemas[name]; ok && !reflect.DeepEqual(existing, schema) {
			return nil, &SchemaConflictError{Name: name}
		}
		schemas[name] = schema
	}

	if len(schemas) == 0 && len(c.securitySchemes) == 0 {
		return nil, nil
	}

	comp := &ComponentsObject{}
	if len(schemas) > 0 {
		comp.Schemas = schemas
	}
	if len(c.securitySchemes) > 0 {
		comp.SecuritySchemes = make(map[string]*SecurityScheme, len(c.securitySchemes))
		for name, scheme := range c.securitySchemes {
			comp.SecuritySchemes[name] = scheme
		}
	}
	return comp, nil
}
