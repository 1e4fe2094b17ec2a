package http

import (
	"context"
	"net/http"
)

// Pinger checks a backing store connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewPingHandler answers 200 when pinger is reachable, 500 otherwise.
// A nil pinger means there is nothing to check.
func NewPingHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
