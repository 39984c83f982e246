package worker

import (
	"context"
	"log"
	"time"

	"taskzone/internal/domain/repository"
)

// TokenPurgeWorker periodically deletes expired refresh tokens, standing in
// for a store-side TTL. The token service checks expiry explicitly as well,
// so the purge interval only bounds table growth, not token validity.
type TokenPurgeWorker struct {
	refreshRepo repository.RefreshTokenRepository
	interval    time.Duration
}

func NewTokenPurgeWorker(refreshRepo repository.RefreshTokenRepository, interval time.Duration) *TokenPurgeWorker {
	return &TokenPurgeWorker{refreshRepo: refreshRepo, interval: interval}
}

func (w *TokenPurgeWorker) Start(ctx context.Context) {
	log.Printf("Token purge worker started, interval %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Token purge worker stopping...")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *TokenPurgeWorker) purge(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := w.refreshRepo.DeleteExpired(purgeCtx)
	if err != nil {
		log.Printf("ERROR: failed to purge expired refresh tokens: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Purged %d expired refresh tokens", n)
	}
}
