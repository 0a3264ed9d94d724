// Package resolver composes the attribute schema with the registry accessor.
//
// It is the layer the CLI talks to: listing modules, resolving a module's
// full configuration with defaults substituted for absent values, reading
// and writing single attributes with validation and coercion, and moving a
// module's settings in and out of profile documents.
//
// Every failure is reported as an *Error whose Kind tells callers which
// exit status to use:
//
//	_, err := r.GetAttribute(ctx, schema.ScopeModule, "FlightSimX", "turbo")
//	switch {
//	case errors.Is(err, resolver.ErrModuleNotFound):
//	    // the game never wrote any settings
//	case errors.Is(err, resolver.ErrUnknownAttribute):
//	    // no such setting
//	}
package resolver
