// Package catalog assembles and publishes the unit registry.
//
// A registry is built from three layers, later layers overriding earlier
// ones under the configured policy:
//
//  1. the builtin database (registry.DefaultRecords)
//  2. definition files, in configuration order
//  3. custom units stored in SQLite
//
// Every rebuild constructs a complete registry first and only then swaps it
// into the registry.Store, so readers always see either the old or the new
// registry in full.
package catalog
