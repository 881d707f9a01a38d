package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// specHandler serves a built document as JSON or YAML depending on the
// request's Accept header. Serialized forms are rendered once and cached;
// the document must not be mutated after the handler is created.
type specHandler struct {
	doc *Document

	jsonOnce sync.Once
	jsonBody []byte
	jsonErr  error

	yamlOnce sync.Once
	yamlBody []byte
	yamlErr  error
}

// Handler returns an http.Handler serving the document.
//
// Content negotiation follows the Accept header: an absent header, "*/*",
// or any media type containing "json" yields JSON; a media type containing
// "yaml" yields YAML. Any other Accept value is answered with 400 and a
// plain-text diagnostic naming the supported types.
func Handler(doc *Document) http.Handler {
	return &specHandler{doc: doc}
}

func (h *specHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")

	switch negotiate(accept) {
	case formatJSON:
		h.jsonOnce.Do(func() {
			h.jsonBody, h.jsonErr = json.Marshal(h.doc)
		})
		if h.jsonErr != nil {
			http.Error(w, "failed to serialize specification", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(h.jsonBody)
	case formatYAML:
		h.yamlOnce.Do(func() {
			h.yamlBody, h.yamlErr = yaml.Marshal(h.doc)
		})
		if h.yamlErr != nil {
			http.Error(w, "failed to serialize specification", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(h.yamlBody)
	default:
		msg := fmt.Sprintf(
			"unsupported Accept header %q: expected a media type matching json or yaml, or */*",
			accept,
		)
		http.Error(w, msg, http.StatusBadRequest)
	}
}

type specFormat int

const (
	formatUnsupported specFormat = iota
	formatJSON
	formatYAML
)

// negotiate picks the serialization format for an Accept header value.
// The header may carry multiple comma-separated media ranges; quality
// parameters are ignored and the first supported range wins.
func negotiate(accept string) specFormat {
	if accept == "" {
		return formatJSON
	}

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))

		switch {
		case mediaType == "*/*":
			return formatJSON
		case strings.Contains(mediaType, "json"):
			return formatJSON
		case strings.Contains(mediaType, "yaml"):
			return formatYAML
		}
	}

	return formatUnsupported
}
