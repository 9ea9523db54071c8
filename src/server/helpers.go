package server

import (
	"confluence-engine/src/helpers"
)

// -----------------------------------------------------------------------------

// httpStatusForError maps the engine error taxonomy onto HTTP. Rate limits
// must not look like missing symbols: 429 tells the caller to back off,
// 404 tells it to give up.
func httpStatusForError(err error) (int, string) {
	switch {
	case helpers.IsRateLimit(err):
		return 429, err.Error()
	case helpers.IsSymbolNotFound(err):
		return 404, err.Error()
	default:
		return 502, err.Error()
	}
}
