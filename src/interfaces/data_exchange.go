package interfaces

import (
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// IDataExchanger is the outward-facing surface of the API layer: a server
// that can be started, stopped and handed fresh scan payloads to fan out
// to connected listeners.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a completed scan payload to all listeners.
	Broadcast(message *models.MLatestData)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
