package harness

import (
	"errors"
	"strconv"

	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/session"
	"github.com/manvel7/Antd-small-test/internal/table"
)

// Error kinds recorded in traces.
const (
	KindNone           = "none"
	KindInvalidDraft   = "invalid_draft"
	KindSessionOpen    = "session_open"
	KindSessionClosed  = "session_closed"
	KindActionInFlight = "action_in_flight"
	KindRowNotFound    = "row_not_found"
	KindConflict       = "conflict"
	KindTimeout        = "timeout"
	KindNetwork        = "network"
	KindBusy           = "busy"
	KindOther          = "other"
)

// ErrorKind classifies err into a stable, message-independent name.
// API errors are "api_<status>". A nil error is "none".
func ErrorKind(err error) string {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, session.ErrInvalidDraft):
		return KindInvalidDraft
	case errors.Is(err, session.ErrSessionOpen):
		return KindSessionOpen
	case errors.Is(err, session.ErrSessionClosed):
		return KindSessionClosed
	case errors.Is(err, session.ErrActionInFlight):
		return KindActionInFlight
	case errors.Is(err, table.ErrRowNotFound):
		return KindRowNotFound
	case errors.Is(err, confirm.ErrBusy):
		return KindBusy
	case client.IsConflict(err):
		return KindConflict
	case client.IsTimeout(err):
		return KindTimeout
	case client.IsNetworkError(err):
		return KindNetwork
	case errors.As(err, &apiErr):
		return "api_" + strconv.Itoa(apiErr.Status)
	default:
		return KindOther
	}
}
