// Package definitions reads unit definition files.
//
// A definitions file is YAML with one list per record kind (prefixes,
// base_units, derived_units, aliases, custom_units) plus optional unit
// systems. The loader only parses and checks shape; the records it produces
// are handed to registry.Builder, which resolves expressions and names.
package definitions
