package openapi

import (
	"net/http"
	"strconv"
)

// OperationGenerator produces an Operation Object against the shared schema
// registry and the builder's options. Generators are stateless: they are
// created once at registration time, stored by the routing layer and the
// builder, and may be invoked any number of times. Their only side effect
// is registry population.
type OperationGenerator func(*Components, *BuilderOptions) (*Operation, error)

// ResponseSet maps response status keys ("200", "404", "default") to body
// values whose schemas are resolved through the registry at build time.
// A nil body denotes a response without content. Sets are merged into an
// operation's own responses with overlap detection: a status key defined
// both by the operation and a set, or by two sets, fails the build.
type ResponseSet map[string]any

// OperationBuilder provides a fluent API for describing a single operation.
// Build assembles the final Operation Object; Generator exposes the builder
// as an OperationGenerator for deferred execution. The builder must not be
// mutated after Generator is taken.
//
// See: https://spec.openapis.org/oas/v3.0.3#operation-object
type OperationBuilder struct {
	name         string
	operationID  string
	summary      string
	description  string
	tags         []string
	deprecated   bool
	parameters   []*Parameter
	security     []SecurityRequirement
	externalDocs *ExternalDocs
	servers      []Server

	requestContents    map[string]any // contentType -> body
	requestDescription string
	requestRequired    *bool // nil = default (true), non-nil = explicit

	responseContents     map[string]map[string]any     // statusKey -> contentType -> body
	responseDescriptions map[string]string             // statusKey -> custom description
	responseHeaders      map[string]map[string]*Header // statusKey -> headerName -> header
	responseLinks        map[string]map[string]*Link   // statusKey -> linkName -> link
	responseSets         []ResponseSet
}

// NewOperation creates an empty operation builder.
func NewOperation() *OperationBuilder {
	return &OperationBuilder{
		requestContents:  make(map[string]any),
		responseContents: make(map[string]map[string]any),
	}
}

// Name sets the endpoint's declared name. When the builder options enable
// operation id inference and no explicit id is set, the name becomes the
// operation id.
func (b *OperationBuilder) Name(name string) *OperationBuilder {
	b.name = name
	return b
}

// OperationID sets an explicit operation id.
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.operationID = id
	return b
}

// Summary sets the operation summary.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.summary = s
	return b
}

// Description sets the operation description.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.description = d
	return b
}

// Tags adds one or more tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.tags = append(b.tags, tags...)
	return b
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.deprecated = true
	return b
}

// Parameter adds a custom parameter to the operation.
func (b *OperationBuilder) Parameter(param *Parameter) *OperationBuilder {
	b.parameters = append(b.parameters, param)
	return b
}

// Security sets operation-level security requirements.
// Call with no arguments to explicitly mark the operation as unauthenticated
// (overrides document-level security).
func (b *OperationBuilder) Security(reqs ...SecurityRequirement) *OperationBuilder {
	if reqs == nil {
		reqs = []SecurityRequirement{}
	}
	b.security = reqs
	return b
}

// ExternalDocs sets external documentation for the operation.
func (b *OperationBuilder) ExternalDocs(url, description string) *OperationBuilder {
	b.externalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// Server adds a server override for the operation.
func (b *OperationBuilder) Server(server Server) *OperationBuilder {
	b.servers = append(b.servers, server)
	return b
}

// Request registers an application/json request body type for the operation.
// This is a shortcut for RequestContent("application/json", body).
func (b *OperationBuilder) Request(body any) *OperationBuilder {
	b.requestContents["application/json"] = body
	return b
}

// RequestContent registers a request body with the given content type.
// The body can be a Go type (schema resolved via the registry), a *Schema
// for explicit schema control, or nil for a content type with no schema.
func (b *OperationBuilder) RequestContent(contentType string, body any) *OperationBuilder {
	b.requestContents[contentType] = body
	return b
}

// RequestDescription sets the description for the request body.
func (b *OperationBuilder) RequestDescription(desc string) *OperationBuilder {
	b.requestDescription = desc
	return b
}

// RequestRequired sets whether the request body is required.
// By default, request bodies are required (true).
func (b *OperationBuilder) RequestRequired(required bool) *OperationBuilder {
	b.requestRequired = &required
	return b
}

// Response registers an application/json response type for the given HTTP
// status code. Pass nil body for responses with no content (e.g., 204).
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if body != nil {
		if b.responseContents[key] == nil {
			b.responseContents[key] = make(map[string]any)
		}
		b.responseContents[key]["application/json"] = body
	} else {
		b.responseContents[key] = nil
	}
	return b
}

// ResponseContent registers a response with the given status code and
// content type.
func (b *OperationBuilder) ResponseContent(statusCode int, contentType string, body any) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.responseContents[key] == nil {
		b.responseContents[key] = make(map[string]any)
	}
	b.responseContents[key][contentType] = body
	return b
}

// DefaultResponse registers an application/json response for the "default"
// status key. The default response catches any status code not covered by
// specific responses. Pass nil body for a default response with no content.
func (b *OperationBuilder) DefaultResponse(body any) *OperationBuilder {
	if body != nil {
		if b.responseContents["default"] == nil {
			b.responseContents["default"] = make(map[string]any)
		}
		b.responseContents["default"]["application/json"] = body
	} else {
		b.responseContents["default"] = nil
	}
	return b
}

// ResponseDescription overrides the auto-generated description for a
// response. By default, descriptions are derived from HTTP status text
// (e.g., "OK", "Not Found").
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	if b.responseDescriptions == nil {
		b.responseDescriptions = make(map[string]string)
	}
	b.responseDescriptions[strconv.Itoa(statusCode)] = desc
	return b
}

// ResponseHeader adds a header to the response for the given HTTP status code.
func (b *OperationBuilder) ResponseHeader(statusCode int, name string, h *Header) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.responseHeaders == nil {
		b.responseHeaders = make(map[string]map[string]*Header)
	}
	if b.responseHeaders[key] == nil {
		b.responseHeaders[key] = make(map[string]*Header)
	}
	b.responseHeaders[key][name] = h
	return b
}

// ResponseLink adds a link to the response for the given HTTP status code.
func (b *OperationBuilder) ResponseLink(statusCode int, name string, l *Link) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.responseLinks == nil {
		b.responseLinks = make(map[string]map[string]*Link)
	}
	if b.responseLinks[key] == nil {
		b.responseLinks[key] = make(map[string]*Link)
	}
	b.responseLinks[key][name] = l
	return b
}

// MergeResponses adds a shared response set to the operation. Sets are
// combined with the operation's own responses at build time; overlapping
// status keys fail the build instead of silently overwriting.
func (b *OperationBuilder) MergeResponses(set ResponseSet) *OperationBuilder {
	b.responseSets = append(b.responseSets, set)
	return b
}

// Generator returns the builder as an OperationGenerator. The builder is
// frozen from this point: Build reads but never mutates it, so the returned
// generator can be invoked repeatedly with no side effects beyond registry
// population.
func (b *OperationBuilder) Generator() OperationGenerator {
	return b.Build
}

// Build assembles the Operation Object, resolving schemas through the
// registry. An operation with no registered responses gets a plain 200
// (the Responses Object is required by the specification).
func (b *OperationBuilder) Build(c *Components, opts *BuilderOptions) (*Operation, error) {
	operationID := b.operationID
	if operationID == "" && opts != nil && opts.InferOperationID {
		operationID = b.name
	}

	op := &Operation{
		OperationID:  operationID,
		Summary:      b.summary,
		Description:  b.description,
		Tags:         b.tags,
		Deprecated:   b.deprecated,
		Security:     b.security,
		ExternalDocs: b.externalDocs,
		Servers:      b.servers,
		Parameters:   b.parameters,
	}

	if len(b.requestContents) > 0 {
		required := true
		if b.requestRequired != nil {
			required = *b.requestRequired
		}
		op.RequestBody = &RequestBody{
			Description: b.requestDescription,
			Required:    required,
			Content:     make(map[string]*MediaType, len(b.requestContents)),
		}
		for ct, body := range b.requestContents {
			mt := &MediaType{}
			if schema := resolveSchema(c, body); schema != nil {
				mt.Schema = schema
			}
			op.RequestBody.Content[ct] = mt
		}
	}

	responses, err := b.buildResponses(c)
	if err != nil {
		return nil, err
	}
	op.Responses = responses

	return op, nil
}

// buildResponses assembles the Responses Object from the operation's own
// registrations and any merged shared sets, detecting status overlaps
// between sources.
func (b *OperationBuilder) buildResponses(c *Components) (map[string]*Response, error) {
	responses := make(map[string]*Response, len(b.responseContents))

	for key, contents := range b.responseContents {
		resp := &Response{Description: b.responseDescription(key)}
		if len(contents) > 0 {
			resp.Content = make(map[string]*MediaType, len(contents))
			for ct, body := range contents {
				mt := &MediaType{}
				if schema := resolveSchema(c, body); schema != nil {
					mt.Schema = schema
				}
				resp.Content[ct] = mt
			}
		}
		if headers, ok := b.responseHeaders[key]; ok && len(headers) > 0 {
			resp.Headers = headers
		}
		if links, ok := b.responseLinks[key]; ok && len(links) > 0 {
			resp.Links = links
		}
		responses[key] = resp
	}

	for _, set := range b.responseSets {
		for key, body := range set {
			if _, ok := responses[key]; ok {
				return nil, &ResponseOverlapError{Status: key}
			}
			resp := &Response{Description: b.responseDescription(key)}
			if body != nil {
				mt := &MediaType{}
				if schema := resolveSchema(c, body); schema != nil {
					mt.Schema = schema
				}
				resp.Content = map[string]*MediaType{"application/json": mt}
			}
			responses[key] = resp
		}
	}

	if len(responses) == 0 {
		responses["200"] = &Response{Description: http.StatusText(http.StatusOK)}
	}

	return responses, nil
}

// responseDescription returns the configured or derived description for a
// response status key.
func (b *OperationBuilder) responseDescription(key string) string {
	if custom, ok := b.responseDescriptions[key]; ok {
		return custom
	}
	if key == "default" {
		return "Default response"
	}
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

// resolveSchema returns a Schema for the given body value. If body is a
// *Schema it is used directly; otherwise the registry derives one via
// reflection.
func resolveSchema(c *Components, body any) *Schema {
	if body == nil {
		return nil
	}
	if s, ok := body.(*Schema); ok {
		return s
	}
	return c.SchemaFor(body)
}

// mergeParameters combines auto-generated path parameters with the
// operation's own parameters. Operation parameters with the same name+in
// override the auto-generated ones. Per the specification, parameter
// uniqueness is determined by name and location (in).
func mergeParameters(auto, custom []*Parameter) []*Parameter {
	if len(auto) == 0 && len(custom) == 0 {
		return nil
	}

	overrides := make(map[[2]string]struct{}, len(custom))
	for _, p := range custom {
		overrides[[2]string{p.Name, p.In}] = struct{}{}
	}

	var merged []*Parameter
	for _, p := range auto {
		if _, ok := overrides[[2]string{p.Name, p.In}]; !ok {
			merged = append(merged, p)
		}
	}

	return append(merged, custom...)
}
