// Package service holds the application logic between the HTTP controllers
// and the in-memory registry. Every mutation applies locally first, then is
// pushed through the persistence bridge; a failed push keeps the local state
// and bumps the unsynced counter for the next full sync to reconcile.
package service

import (
	"context"
	"time"

	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
)

const persistTimeout = 10 * time.Second

// persist runs one bridge mutation with a timeout. Returns whether the
// remote write landed; on failure the registry is marked unsynced.
func persist(reg *store.Registry, op string, fn func(ctx context.Context) error) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("Persist failed, keeping local state")
		reg.MarkUnsynced()
		return false
	}
	return true
}
