// Package customunit persists user-defined custom units in SQLite.
//
// Stored units are plain registry.CustomDefinition values plus an ID,
// description and timestamps. They are layered over the builtin database
// and definition files whenever the registry is rebuilt.
package customunit
