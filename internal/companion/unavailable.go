package companion

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Unavailable for every request.
var ErrNotConfigured = errors.New("companion: no model configured")

// Unavailable is the Client used when no API key is set. The rest of the
// application works normally; only the companion endpoints fail.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConfigured
}
