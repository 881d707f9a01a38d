package openapi

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultOpenAPIVersion is the OpenAPI version emitted by built documents.
const DefaultOpenAPIVersion = "3.0.3"

// canonicalMethods lists the HTTP methods an operation slot exists for,
// in the order operations are assembled within a path. The order matches
// byte-wise comparison of the method names.
var canonicalMethods = []string{
	"DELETE", "GET", "HEAD", "OPTIONS", "PATCH", "POST", "PUT", "TRACE",
}

// methodRank returns the position of method in the canonical order, or -1
// if the method has no operation slot.
func methodRank(method string) int {
	for i, m := range canonicalMethods {
		if m == method {
			return i
		}
	}
	return -1
}

// BuilderOptions carries settings that operation generators may consult
// during document assembly.
type BuilderOptions struct {
	// InferOperationID derives an operation id from the endpoint's declared
	// name when no explicit id is set.
	InferOperationID bool
}

// Builder assembles an OpenAPI document from registered operation
// generators. Registration is cheap: generators are stored, not executed,
// and only run when Build is called. Build can be called repeatedly; the
// schema registry persists across builds, and identical registration state
// yields byte-identical serialized documents.
type Builder struct {
	title          string
	version        string
	description    string
	openapiVersion string
	contact        *Contact
	license        *License
	servers        []Server
	tags           []Tag
	security       []SecurityRequirement
	externalDocs   *ExternalDocs

	components *Components
	options    BuilderOptions

	// operations[path][method] -> generator
	operations map[string]map[string]OperationGenerator

	err error
}

// New creates a document builder with the given API title and version.
func New(title, version string) *Builder {
	return &Builder{
		title:          title,
		version:        version,
		openapiVersion: DefaultOpenAPIVersion,
		components:     NewComponents(),
		operations:     make(map[string]map[string]OperationGenerator),
	}
}

// Description sets the API description.
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// Contact sets the API contact information.
func (b *Builder) Contact(c *Contact) *Builder {
	b.contact = c
	return b
}

// License sets the API license information.
func (b *Builder) License(l *License) *Builder {
	b.license = l
	return b
}

// SetOpenAPIVersion overrides the OpenAPI version string emitted in the
// document. The document model targets 3.0.x; other values are emitted
// as-is without structural translation.
func (b *Builder) SetOpenAPIVersion(v string) *Builder {
	b.openapiVersion = v
	return b
}

// AddServer appends a server to the document's server list.
func (b *Builder) AddServer(url, description string) *Builder {
	b.servers = append(b.servers, Server{URL: url, Description: description})
	return b
}

// AddTag appends a tag definition to the document.
func (b *Builder) AddTag(name, description string) *Builder {
	b.tags = append(b.tags, Tag{Name: name, Description: description})
	return b
}

// SetExternalDocs sets document-level external documentation.
func (b *Builder) SetExternalDocs(url, description string) *Builder {
	b.externalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// AddSecurity appends a document-level security requirement.
func (b *Builder) AddSecurity(req SecurityRequirement) *Builder {
	b.security = append(b.security, req)
	return b
}

// AddSecurityScheme registers a named security scheme. Registering two
// different schemes under the same name records an error surfaced at Build.
func (b *Builder) AddSecurityScheme(name string, scheme *SecurityScheme) *Builder {
	if err := b.components.RegisterSecurityScheme(name, scheme); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Components exposes the builder's schema registry. Named schemas can be
// registered on it directly; generators receive the same registry during
// Build.
func (b *Builder) Components() *Components {
	return b.components
}

// InferOperationIDs enables operation id inference from endpoint names for
// generators that support it.
func (b *Builder) InferOperationIDs() *Builder {
	b.options.InferOperationID = true
	return b
}

// AddOperation registers an operation generator for the given path and
// method. The path uses colon-style placeholders (":id") or brace-style
// ("{id}"); both normalize to brace-style in the built document. The
// generator is not executed until Build.
//
// Registering a second generator for an occupied path+method slot returns
// a *DuplicateOperationError; an unknown method returns an
// *UnsupportedMethodError.
func (b *Builder) AddOperation(path, method string, gen OperationGenerator) error {
	if methodRank(method) < 0 {
		return &UnsupportedMethodError{Method: method}
	}

	methods, ok := b.operations[path]
	if !ok {
		methods = make(map[string]OperationGenerator)
		b.operations[path] = methods
	}
	if _, exists := methods[method]; exists {
		return &DuplicateOperationError{Path: path, Method: method}
	}
	methods[method] = gen
	return nil
}

// Operation is the permissive, chainable form of AddOperation:
// re-registering an occupied path+method slot replaces the pending
// generator, keeping re-registration idempotent. An unsupported method is
// recorded as the builder's first error and surfaced by Err and Build.
func (b *Builder) Operation(path, method string, gen OperationGenerator) *Builder {
	if methodRank(method) < 0 {
		if b.err == nil {
			b.err = &UnsupportedMethodError{Method: method}
		}
		return b
	}

	methods, ok := b.operations[path]
	if !ok {
		methods = make(map[string]OperationGenerator)
		b.operations[path] = methods
	}
	methods[method] = gen
	return b
}

// Err returns the first error recorded during chained registration, or nil.
func (b *Builder) Err() error {
	return b.err
}

// Build executes all registered generators and assembles the document.
// Generators run in deterministic order: paths byte-wise ascending, methods
// in canonical order within a path. Any generator failure, duplicate
// operation id, or schema registry conflict aborts the build; no partial
// document is returned.
func (b *Builder) Build() (*Document, error) {
	if b.err != nil {
		return nil, b.err
	}

	// Normalize before sorting so ":id" and "{id}" spellings of the same
	// template order identically and collide visibly instead of silently
	// overwriting each other's slots.
	type pathEntry struct {
		params  []*Parameter
		methods map[string]OperationGenerator
	}
	normalized := make(map[string]*pathEntry, len(b.operations))
	for path, methods := range b.operations {
		template, params := normalizePath(path)
		entry := normalized[template]
		if entry == nil {
			entry = &pathEntry{params: params, methods: make(map[string]OperationGenerator)}
			normalized[template] = entry
		}
		for method, gen := range methods {
			if _, exists := entry.methods[method]; exists {
				return nil, &DuplicateOperationError{Path: template, Method: method}
			}
			entry.methods[method] = gen
		}
	}

	paths := make([]string, 0, len(normalized))
	for path := range normalized {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	doc := &Document{
		OpenAPI: b.openapiVersion,
		Info: Info{
			Title:       b.title,
			Version:     b.version,
			Description: b.description,
			Contact:     b.contact,
			License:     b.license,
		},
		Servers:      b.servers,
		Tags:         b.tags,
		Security:     b.security,
		ExternalDocs: b.externalDocs,
		Paths:        make(map[string]*PathItem, len(paths)),
	}

	seenIDs := make(map[string]struct{})

	for _, path := range paths {
		entry := normalized[path]

		item := &PathItem{}
		doc.Paths[path] = item

		for _, method := range canonicalMethods {
			gen, ok := entry.methods[method]
			if !ok {
				continue
			}

			op, err := gen(b.components, &b.options)
			if err != nil {
				return nil, fmt.Errorf("generate operation %s %s: %w", method, path, err)
			}

			if op.OperationID != "" {
				if _, dup := seenIDs[op.OperationID]; dup {
					return nil, &DuplicateOperationIDError{ID: op.OperationID}
				}
				seenIDs[op.OperationID] = struct{}{}
			}

			op.Parameters = mergeParameters(entry.params, op.Parameters)

			if err := setPathItemOperation(item, method, op); err != nil {
				return nil, err
			}
		}
	}

	components, err := b.components.Finalize()
	if err != nil {
		return nil, err
	}
	doc.Components = components

	return doc, nil
}

// setPathItemOperation assigns an operation to its method slot on the
// path item.
func setPathItemOperation(item *PathItem, method string, op *Operation) error {
	switch method {
	case "GET":
		item.Get = op
	case "PUT":
		item.Put = op
	case "POST":
		item.Post = op
	case "DELETE":
		item.Delete = op
	case "OPTIONS":
		item.Options = op
	case "HEAD":
		item.Head = op
	case "PATCH":
		item.Patch = op
	case "TRACE":
		item.Trace = op
	default:
		return &UnsupportedMethodError{Method: method}
	}
	return nil
}

// NormalizePath converts colon-style path placeholders (":id") to the
// brace-style template syntax ("{id}") required by the specification.
// Brace-style segments pass through unchanged.
func NormalizePath(path string) string {
	normalized, _ := normalizePath(path)
	return normalized
}

// normalizePath rewrites placeholder segments and derives the path
// parameters the template declares. Each placeholder produces a required
// string parameter; operations can override one by declaring a parameter
// with the same name in "path".
func normalizePath(path string) (string, []*Parameter) {
	segments := strings.Split(path, "/")

	var params []*Parameter
	for i, seg := range segments {
		var name string
		switch {
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			name = seg[1:]
			segments[i] = "{" + name + "}"
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			name = seg[1 : len(seg)-1]
		default:
			continue
		}

		params = append(params, &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}

	return strings.Join(segments, "/"), params
}
