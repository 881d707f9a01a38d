// Package routes pairs HTTP routing with OpenAPI document assembly.
//
// A Router shadows a tree of paths and per-method handlers. Handlers
// wrapped with WithOperation carry an operation generator; when the tree
// is finished the generators are rendered into an OpenAPI document and
// the document is mounted alongside the routed endpoints, served with
// JSON/YAML content negotiation.
package routes
