// Package llmerr translates status codes returned by the native inference
// engine into typed Go errors.
//
// Every failure reported by the engine becomes a single immutable *Error
// carrying the engine status, a discriminant Kind, the short message and the
// engine's message stack. Kinds double as sentinels:
//
//	if errors.Is(err, llmerr.KindStopIteration) {
//		// end of sequence
//	}
package llmerr
