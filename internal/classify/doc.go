// Package classify decides whether a failure returned by the host represents
// cooperative cancellation (the user paused or cancelled) or a genuine fault.
//
// Typed errors are checked first: anything wrapping domain.ErrCancelled or
// context.Canceled is cancellation. Untyped failures fall back to matching
// the failure text against configurable marker words, because older host
// builds signal cancellation only through the wording of the error.
package classify
