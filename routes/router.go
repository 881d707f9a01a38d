package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/specmux/specmux/openapi"
)

// DefaultSpecPath is the path the assembled specification document is
// mounted on when none is given.
const DefaultSpecPath = "/openapi"

// Router mirrors an HTTP routing tree, collecting the operation generators
// attached to handlers so the full tree can be rendered into an OpenAPI
// document. Composition errors (conflicting merges, nested collisions) are
// recorded and surfaced by Err and Finish rather than panicking.
type Router struct {
	entries map[string]*MethodRouter
	builder *openapi.Builder
	err     error
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{entries: make(map[string]*MethodRouter)}
}

// Route mounts a method router at the given path. Mounting on a path that
// already has an entry replaces the previous entry wholesale.
func (r *Router) Route(path string, m *MethodRouter) *Router {
	r.entries[path] = m
	return r
}

// HandleFunc mounts a plain handler function for a single method, wrapped
// with an optional operation generator. It is a shortcut for Route with a
// freshly built method router. An unknown method is recorded as a
// composition error.
func (r *Router) HandleFunc(method, path string, h http.HandlerFunc, gen openapi.OperationGenerator) *Router {
	if _, ok := routableMethods[method]; !ok {
		if r.err == nil {
			r.err = &openapi.UnsupportedMethodError{Method: method}
		}
		return r
	}

	var handler http.Handler = h
	if gen != nil {
		handler = WithOperation(h, gen)
	}
	m := NewMethodRouter().set(method, handler)
	return r.Route(path, m)
}

// Nest mounts another router's entries under a path prefix. Each inner
// path is prefixed; when the composed path collides with an existing entry
// the method routers are merged and a method-level conflict is recorded as
// a composition error.
func (r *Router) Nest(prefix string, inner *Router) *Router {
	if inner.err != nil && r.err == nil {
		r.err = inner.err
	}

	for innerPath, m := range inner.entries {
		full := joinPaths(prefix, innerPath)
		existing, ok := r.entries[full]
		if !ok {
			r.entries[full] = m
			continue
		}
		if err := existing.Merge(m); err != nil && r.err == nil {
			r.err = fmt.Errorf("nest %s: %w", full, err)
		}
	}
	return r
}

// Merge copies the other router's entries into this one. Entries on the
// same path merge at the method level; a method registered on both sides
// records a composition error surfaced at Err or Finish.
func (r *Router) Merge(other *Router) *Router {
	if other.err != nil && r.err == nil {
		r.err = other.err
	}

	for path, m := range other.entries {
		existing, ok := r.entries[path]
		if !ok {
			r.entries[path] = m
			continue
		}
		if err := existing.Merge(m); err != nil && r.err == nil {
			r.err = fmt.Errorf("merge %s: %w", path, err)
		}
	}
	return r
}

// Err returns the first composition error recorded on this router, or nil.
func (r *Router) Err() error {
	return r.err
}

// SetBuilder provides a preconfigured document builder used by Finish.
// Without one, Finish creates a plain builder from its title and version
// arguments; with one, those arguments are ignored and the builder's own
// metadata applies.
func (r *Router) SetBuilder(b *openapi.Builder) *Router {
	r.builder = b
	return r
}

// UpdateBuilder applies fn to the router's builder, creating a default one
// first if needed. Useful for adding servers, tags or security schemes
// without replacing the builder wholesale.
func (r *Router) UpdateBuilder(title, version string, fn func(*openapi.Builder)) *Router {
	if r.builder == nil {
		r.builder = openapi.New(title, version)
	}
	fn(r.builder)
	return r
}

// Operations returns every operation generator in the tree, keyed by path
// then method. Paths whose handlers carry no generators are omitted.
func (r *Router) Operations() map[string]map[string]openapi.OperationGenerator {
	all := make(map[string]map[string]openapi.OperationGenerator)
	for path, m := range r.entries {
		ops := m.Operations()
		if len(ops) > 0 {
			all[path] = ops
		}
	}
	return all
}

// Finish assembles the OpenAPI document from the collected tree and
// returns an http.Handler serving both the routed endpoints and the
// document itself at DefaultSpecPath. Any recorded composition error or
// document build failure aborts with no handler.
func (r *Router) Finish(title, version string) (http.Handler, error) {
	return r.FinishAt(DefaultSpecPath, title, version)
}

// FinishAt is Finish with an explicit mount path for the document.
func (r *Router) FinishAt(specPath, title, version string) (http.Handler, error) {
	if r.err != nil {
		return nil, r.err
	}

	builder := r.builder
	if builder == nil {
		builder = openapi.New(title, version)
	}

	for path, ops := range r.Operations() {
		for method, gen := range ops {
			if err := builder.AddOperation(path, method, gen); err != nil {
				return nil, err
			}
		}
	}
	if err := builder.AddOperation(specPath, http.MethodGet, specDocumentOperation); err != nil {
		return nil, fmt.Errorf("mount document at %s: %w", specPath, err)
	}

	doc, err := builder.Build()
	if err != nil {
		return nil, err
	}

	specRouter := Get(openapi.Handler(doc))
	if existing, ok := r.entries[specPath]; ok {
		if err := specRouter.Merge(existing); err != nil {
			return nil, fmt.Errorf("mount document at %s: %w", specPath, err)
		}
	}

	mux := http.NewServeMux()
	for path, m := range r.entries {
		if path == specPath {
			continue
		}
		mux.Handle(muxPattern(path), m)
	}
	mux.Handle(muxPattern(specPath), specRouter)

	return mux, nil
}

// specDocumentOperation describes the endpoint serving the document itself.
func specDocumentOperation(c *openapi.Components, opts *openapi.BuilderOptions) (*openapi.Operation, error) {
	return openapi.NewOperation().
		Name("getOpenAPIDocument").
		Summary("OpenAPI document").
		Description("Returns this API's OpenAPI document as JSON or YAML, selected via the Accept header.").
		ResponseContent(http.StatusOK, "application/json", nil).
		ResponseContent(http.StatusOK, "application/yaml", nil).
		Response(http.StatusBadRequest, nil).
		ResponseDescription(http.StatusBadRequest, "Unsupported Accept header").
		Build(c, opts)
}

// joinPaths concatenates a mount prefix and an inner route path, keeping
// exactly one slash between them. Nesting the root path mounts the entry
// at the prefix itself.
func joinPaths(prefix, inner string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if inner == "" || inner == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(inner, "/") {
		inner = "/" + inner
	}
	return prefix + inner
}

// muxPattern rewrites colon-style placeholders to the brace-style wildcards
// http.ServeMux matches on.
func muxPattern(path string) string {
	return openapi.NormalizePath(path)
}
