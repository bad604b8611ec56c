package httpapi

import "errors"

// apiError is the façade's own typed taxonomy (spec.md §7), independent of
// the matching/registry sentinel errors it wraps. Each constructor fixes
// the HTTP status the error maps to.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func newAPIError(status int, msg string) error { return &apiError{status: status, msg: msg} }

var (
	errBadJSON = func() error {
		return newAPIError(400, "incoming data was not valid JSON")
	}
	errMissingField = func(field string) error {
		return newAPIError(400, "incoming POST was missing required field: "+field)
	}
	errBadType = func(field string) error {
		return newAPIError(400, "a value in the POST had the wrong type: "+field)
	}
	errBadValue = func(field string) error {
		return newAPIError(400, "illegal value (usually a non-positive number): "+field)
	}
	errURLMismatch = func() error {
		return newAPIError(400, "incoming POST data disagreed with request URL")
	}
	errBookLimit = func() error {
		return newAPIError(400, "book limit exceeded! (see command line options)")
	}
	errNoSuchVenue = func(venue string) error {
		return newAPIError(404, "venue "+venue+" does not exist (create it by using it)")
	}
	errNoSuchOrder = func() error {
		return newAPIError(404, "no such order for that exchange + symbol combo")
	}
	errNoAPIKey = func() error {
		return newAPIError(401, "server is in authenticated mode but no API key was received")
	}
	errAuthFailure = func() error {
		return newAPIError(401, "unknown account or wrong API key")
	}
	errDisabled = func() error {
		return newAPIError(403, "disabled or not enabled (see command line options)")
	}
	errInternal = func(cause error) error {
		return newAPIError(500, "internal error: "+cause.Error())
	}
)

// statusAndMessage unwraps any error into the (status, message) pair the
// façade writes to the client. Anything not already an *apiError is
// treated as an unexpected internal failure, matching spec.md §7's
// "internal errors must never crash the server" requirement.
func statusAndMessage(err error) (int, string) {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status, ae.msg
	}
	return 500, errInternal(err).Error()
}
