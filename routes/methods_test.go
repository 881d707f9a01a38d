package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specmux/specmux/openapi"
)

func textHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

func namedOperation(name string) openapi.OperationGenerator {
	return func(c *openapi.Components, opts *openapi.BuilderOptions) (*openapi.Operation, error) {
		return openapi.NewOperation().OperationID(name).Build(c, opts)
	}
}

func dispatch(m *MethodRouter, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMethodRouterDispatch(t *testing.T) {
	t.Run("routes by method", func(t *testing.T) {
		m := Get(textHandler("got")).Post(textHandler("created"))

		rec := dispatch(m, http.MethodGet, "/things")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "got", rec.Body.String())

		rec = dispatch(m, http.MethodPost, "/things")
		assert.Equal(t, "created", rec.Body.String())
	})

	t.Run("unhandled method yields 405 with allow header", func(t *testing.T) {
		m := Get(textHandler("got")).Delete(textHandler("gone"))

		rec := dispatch(m, http.MethodPut, "/things")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "DELETE, GET, HEAD", rec.Header().Get("Allow"))
	})

	t.Run("head falls back to get", func(t *testing.T) {
		m := Get(textHandler("got"))

		rec := dispatch(m, http.MethodHead, "/things")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("explicit head handler wins", func(t *testing.T) {
		m := Get(textHandler("got")).Head(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := dispatch(m, http.MethodHead, "/things")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("registration replaces previous handler", func(t *testing.T) {
		m := Get(textHandler("first")).Get(textHandler("second"))

		rec := dispatch(m, http.MethodGet, "/things")
		assert.Equal(t, "second", rec.Body.String())
	})
}

func TestMethodRouterOperations(t *testing.T) {
	t.Run("collects generators by method", func(t *testing.T) {
		m := NewMethodRouter().
			Get(WithOperation(textHandler("list"), namedOperation("list"))).
			Post(WithOperation(textHandler("create"), namedOperation("create")))

		ops := m.Operations()
		require.Len(t, ops, 2)
		assert.Contains(t, ops, http.MethodGet)
		assert.Contains(t, ops, http.MethodPost)
	})

	t.Run("undocumented handlers omitted", func(t *testing.T) {
		m := NewMethodRouter().
			Get(WithOperation(textHandler("list"), namedOperation("list"))).
			Delete(textHandler("gone"))

		ops := m.Operations()
		require.Len(t, ops, 1)
		assert.Contains(t, ops, http.MethodGet)
	})

	t.Run("fully undocumented router yields empty map", func(t *testing.T) {
		m := Get(textHandler("plain"))
		assert.Empty(t, m.Operations())
	})

	t.Run("wrapped handler still serves", func(t *testing.T) {
		m := Get(WithOperation(textHandler("documented"), namedOperation("doc")))

		rec := dispatch(m, http.MethodGet, "/things")
		assert.Equal(t, "documented", rec.Body.String())
	})
}

func TestMethodRouterMerge(t *testing.T) {
	t.Run("disjoint methods merge", func(t *testing.T) {
		a := Get(WithOperation(textHandler("list"), namedOperation("list")))
		b := Post(WithOperation(textHandler("create"), namedOperation("create")))

		require.NoError(t, a.Merge(b))

		assert.Equal(t, "list", dispatch(a, http.MethodGet, "/x").Body.String())
		assert.Equal(t, "create", dispatch(a, http.MethodPost, "/x").Body.String())
		assert.Len(t, a.Operations(), 2)
	})

	t.Run("overlapping method fails naming the method", func(t *testing.T) {
		a := Get(textHandler("one"))
		b := Get(textHandler("two")).Post(textHandler("create"))

		err := a.Merge(b)
		var conflict *MethodConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, http.MethodGet, conflict.Method)

		// Failed merge leaves the receiver untouched.
		assert.Equal(t, "one", dispatch(a, http.MethodGet, "/x").Body.String())
		assert.Equal(t, http.StatusMethodNotAllowed, dispatch(a, http.MethodPost, "/x").Code)
	})
}
