// Package errors provides structured error handling for the combat simulator.
//
// This package is inspired by the goaterr pattern and provides:
//   - Structured errors with codes, messages, and metadata
//   - User-friendly error messages
//   - Error context preservation through wrapping
//   - Validation error helpers for loader and config checks
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("attack not found")
//	err := errors.InvalidArgumentf("invalid bias weight: %d", bias)
//
// Adding metadata:
//
//	err := errors.NotFound("attack not found").
//	    WithMeta("attack", attackName).
//	    WithMeta("combatant", actor.Name)
//
// Wrapping errors:
//
//	if err := loader.LoadRoster(path); err != nil {
//	    return errors.Wrap(err, "failed to load roster")
//	}
//
// # Error Checking
//
// Use the Is* helpers or GetCode to branch on error semantics:
//
//	if errors.IsInvalidArgument(err) {
//	    // bad input data, report and exit
//	}
//	if errors.IsInternal(err) {
//	    // engine defect, not a simulation outcome
//	}
//
// # Validation
//
// The ValidationBuilder accumulates field errors so callers see every
// problem with their data at once:
//
//	vb := errors.NewValidationBuilder().
//	    RequiredField("Roster").
//	    Fieldf("bias", "invalid weight: %d", bias)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Engine Defects vs Outcomes
//
// CodeInternal marks structural impossibilities inside a running
// encounter (an already-spent action slot spent again, a dead combatant
// taking a turn). These abort the encounter and are never conflated with
// decisive results or stalemates; Code.Fatal distinguishes them.
package errors
