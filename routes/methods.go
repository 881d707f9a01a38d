package routes

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/specmux/specmux/openapi"
)

// MethodConflictError reports a merge of two method routers that both
// register a handler for the same method.
type MethodConflictError struct {
	Method string
}

func (e *MethodConflictError) Error() string {
	return fmt.Sprintf("handler already registered for method %s", e.Method)
}

// routableMethods is the fixed set of HTTP methods a slot exists for.
var routableMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// documentedHandler pairs an HTTP handler with the operation generator
// describing it.
type documentedHandler struct {
	http.Handler
	gen openapi.OperationGenerator
}

// WithOperation attaches an operation generator to a handler. The routing
// layer picks the generator up when the handler is registered; handlers
// without one stay routable but undocumented.
func WithOperation(h http.Handler, gen openapi.OperationGenerator) http.Handler {
	return &documentedHandler{Handler: h, gen: gen}
}

// methodSlot holds the handler and optional generator registered for a
// single HTTP method.
type methodSlot struct {
	handler http.Handler
	gen     openapi.OperationGenerator
}

// MethodRouter dispatches requests to per-method handlers on a single path.
// Requests for methods without a handler are answered with 405 and an Allow
// header; HEAD falls back to the GET handler when no HEAD handler is set.
type MethodRouter struct {
	slots map[string]*methodSlot
}

// NewMethodRouter creates an empty method router.
func NewMethodRouter() *MethodRouter {
	return &MethodRouter{slots: make(map[string]*methodSlot)}
}

// Get registers a GET handler on a new method router.
func Get(h http.Handler) *MethodRouter { return NewMethodRouter().Get(h) }

// Head registers a HEAD handler on a new method router.
func Head(h http.Handler) *MethodRouter { return NewMethodRouter().Head(h) }

// Post registers a POST handler on a new method router.
func Post(h http.Handler) *MethodRouter { return NewMethodRouter().Post(h) }

// Put registers a PUT handler on a new method router.
func Put(h http.Handler) *MethodRouter { return NewMethodRouter().Put(h) }

// Patch registers a PATCH handler on a new method router.
func Patch(h http.Handler) *MethodRouter { return NewMethodRouter().Patch(h) }

// Delete registers a DELETE handler on a new method router.
func Delete(h http.Handler) *MethodRouter { return NewMethodRouter().Delete(h) }

// Options registers an OPTIONS handler on a new method router.
func Options(h http.Handler) *MethodRouter { return NewMethodRouter().Options(h) }

// Trace registers a TRACE handler on a new method router.
func Trace(h http.Handler) *MethodRouter { return NewMethodRouter().Trace(h) }

// Get sets the GET handler, replacing any previous one.
func (m *MethodRouter) Get(h http.Handler) *MethodRouter { return m.set(http.MethodGet, h) }

// Head sets the HEAD handler, replacing any previous one.
func (m *MethodRouter) Head(h http.Handler) *MethodRouter { return m.set(http.MethodHead, h) }

// Post sets the POST handler, replacing any previous one.
func (m *MethodRouter) Post(h http.Handler) *MethodRouter { return m.set(http.MethodPost, h) }

// Put sets the PUT handler, replacing any previous one.
func (m *MethodRouter) Put(h http.Handler) *MethodRouter { return m.set(http.MethodPut, h) }

// Patch sets the PATCH handler, replacing any previous one.
func (m *MethodRouter) Patch(h http.Handler) *MethodRouter { return m.set(http.MethodPatch, h) }

// Delete sets the DELETE handler, replacing any previous one.
func (m *MethodRouter) Delete(h http.Handler) *MethodRouter { return m.set(http.MethodDelete, h) }

// Options sets the OPTIONS handler, replacing any previous one.
func (m *MethodRouter) Options(h http.Handler) *MethodRouter { return m.set(http.MethodOptions, h) }

// Trace sets the TRACE handler, replacing any previous one.
func (m *MethodRouter) Trace(h http.Handler) *MethodRouter { return m.set(http.MethodTrace, h) }

func (m *MethodRouter) set(method string, h http.Handler) *MethodRouter {
	slot := &methodSlot{handler: h}
	if dh, ok := h.(*documentedHandler); ok {
		slot.handler = dh.Handler
		slot.gen = dh.gen
	}
	m.slots[method] = slot
	return m
}

// Merge copies the other router's handlers into this one. A method
// registered on both sides fails with a *MethodConflictError naming the
// method; on failure this router is left unchanged.
func (m *MethodRouter) Merge(other *MethodRouter) error {
	for method := range other.slots {
		if _, exists := m.slots[method]; exists {
			return &MethodConflictError{Method: method}
		}
	}
	for method, slot := range other.slots {
		m.slots[method] = slot
	}
	return nil
}

// Operations returns the operation generators registered on this router,
// keyed by HTTP method. Handlers registered without a generator are
// omitted; an entirely undocumented router yields an empty map.
func (m *MethodRouter) Operations() map[string]openapi.OperationGenerator {
	ops := make(map[string]openapi.OperationGenerator)
	for method, slot := range m.slots {
		if slot.gen != nil {
			ops[method] = slot.gen
		}
	}
	return ops
}

func (m *MethodRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slot, ok := m.slots[r.Method]
	if !ok && r.Method == http.MethodHead {
		slot, ok = m.slots[http.MethodGet]
	}
	if !ok {
		w.Header().Set("Allow", strings.Join(m.allowedMethods(), ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	slot.handler.ServeHTTP(w, r)
}

// allowedMethods returns the methods this router answers, sorted, for use
// in the Allow header. HEAD is included whenever GET is handled.
func (m *MethodRouter) allowedMethods() []string {
	methods := make([]string, 0, len(m.slots)+1)
	for method := range m.slots {
		methods = append(methods, method)
	}
	if _, hasGet := m.slots[http.MethodGet]; hasGet {
		if _, hasHead := m.slots[http.MethodHead]; !hasHead {
			methods = append(methods, http.MethodHead)
		}
	}
	sort.Strings(methods)
	return methods
}
