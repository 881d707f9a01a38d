// Package openapi builds OpenAPI 3.0 documents from code.
//
// Operations are described by generators, functions executed lazily when a
// Builder assembles the document. Schemas are derived from Go types via
// reflection through a shared Components registry, so a type referenced by
// several operations appears once under #/components/schemas. Built
// documents serialize deterministically: the same registration state always
// produces byte-identical JSON and YAML.
//
// See: https://spec.openapis.org/oas/v3.0.3
package openapi
