// Package system holds named unit systems (SI, CGS, Imperial, Natural and
// any declared in definition files) and a Manager that selects among them.
//
// A UnitSystem is plain data: one base unit per dimension and a table of
// constants. UnitFor composes the base units into the unit a given
// dimension vector should be expressed in, which is all a cross-system
// conversion needs.
package system
