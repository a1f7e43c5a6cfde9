package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/storage"
)

const janitorBatchSize = 200

// janitorService removes uploaded images that never made it into a shorlog or
// draft. Batches are not rolled back when the user edits the image set, so
// abandoned uploads accumulate until this sweep collects them.
type janitorService struct {
	imageRepo repository.ImageRepository
	store     storage.ImageStore
	interval  time.Duration
	orphanTTL time.Duration
	now       func() time.Time
	log       zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	// Semaphore: bounds concurrent deletions
	sem chan struct{}
}

func newJanitorService(imageRepo repository.ImageRepository, store storage.ImageStore, cfg config.JanitorConfig, log zerolog.Logger) *janitorService {
	// Deletion is I/O-bound, so allow more workers than cores
	maxWorkers := runtime.NumCPU() * 2
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	if maxWorkers > 16 {
		maxWorkers = 16
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &janitorService{
		imageRepo: imageRepo,
		store:     store,
		interval:  interval,
		orphanTTL: cfg.OrphanTTL,
		now:       time.Now,
		log:       log.With().Str("service", "janitor").Logger(),
		sem:       make(chan struct{}, maxWorkers),
	}
}

// StartProcessor sweeps on every tick until StopProcessor is called or ctx ends
func (s *janitorService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval).Dur("orphan_ttl", s.orphanTTL).Msg("Janitor started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			s.log.Info().Msg("Janitor stopping")
			return
		case <-ticker.C:
			if _, err := s.Sweep(runCtx); err != nil && runCtx.Err() == nil {
				s.log.Error().Err(err).Msg("Orphan sweep failed")
			}
		}
	}
}

// StopProcessor cancels the loop and waits for in-flight deletions
func (s *janitorService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Janitor stopped")
}

// Sweep deletes one batch of orphaned images and returns how many were removed
func (s *janitorService) Sweep(ctx context.Context) (int, error) {
	if s.orphanTTL <= 0 {
		return 0, nil
	}

	orphans, err := s.imageRepo.ListOrphans(ctx, s.now().Add(-s.orphanTTL), janitorBatchSize)
	if err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	var removed int64
	var wg sync.WaitGroup

	for _, img := range orphans {
		// Blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return int(atomic.LoadInt64(&removed)), ctx.Err()
		}

		wg.Add(1)
		s.wg.Add(1)
		go func(img *models.Image) {
			defer s.wg.Done()
			defer wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("image_id", img.ID).Msg("Orphan removal panicked - recovered")
				}
			}()

			if s.removeOrphan(ctx, img) {
				atomic.AddInt64(&removed, 1)
			}
		}(img)
	}

	wg.Wait()
	count := int(atomic.LoadInt64(&removed))
	s.log.Info().Int("found", len(orphans)).Int("removed", count).Msg("Orphan sweep completed")
	return count, nil
}

func (s *janitorService) removeOrphan(ctx context.Context, img *models.Image) bool {
	if img.SourceType == models.SourceFile {
		if err := s.store.Delete(img.FilePath); err != nil {
			s.log.Error().Err(err).Str("image_id", img.ID).Msg("Failed to delete orphan file")
			return false
		}
	}
	if err := s.imageRepo.Delete(ctx, img.ID); err != nil {
		s.log.Error().Err(err).Str("image_id", img.ID).Msg("Failed to delete orphan record")
		return false
	}
	return true
}
