// Package conversion converts quantities between units and between unit
// systems.
//
// A conversion checks that source and target have equal dimension vectors,
// maps the value to the canonical unit of that dimension and maps it back
// out through the target. Affine units carry their offset through this round
// trip; functional units evaluate their formulas and fail with
// units.ErrUnsupportedDirection when no inverse was declared.
//
// Every attempt, successful or not, is reported to a Recorder.
package conversion
