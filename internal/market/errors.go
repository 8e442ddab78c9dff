package market

import (
	"errors"
	"fmt"
)

// Sentinel and typed errors for quote retrieval.
var (
	ErrNoData         = errors.New("no data")
	ErrNotFound       = errors.New("not found")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnavailable    = errors.New("quote service unavailable")
)

// RemoteError wraps non-specific remote errors with the status code and the provider's description.
type RemoteError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("remote error %d", e.StatusCode)
}
