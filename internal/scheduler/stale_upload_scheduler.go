package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/pkg/logger"
)

const staleUploadMessage = "import timed out"

// StaleUploadScheduler fails upload jobs stuck in "processing", e.g.
// after a crash between job creation and finalization.
type StaleUploadScheduler struct {
	cron       *cron.Cron
	uploadRepo repository.UploadRepository
	staleAfter time.Duration
}

func NewStaleUploadScheduler(uploadRepo repository.UploadRepository, staleAfter time.Duration) *StaleUploadScheduler {
	return &StaleUploadScheduler{
		cron:       cron.New(),
		uploadRepo: uploadRepo,
		staleAfter: staleAfter,
	}
}

func (s *StaleUploadScheduler) Start() error {
	// every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.sweep)
	if err != nil {
		logger.Error("Failed to add cron job for stale upload sweep", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Stale upload scheduler started (every 15 minutes)", map[string]interface{}{
		"stale_after": s.staleAfter.String(),
	})
	return nil
}

func (s *StaleUploadScheduler) Stop() {
	logger.Info("Stopping stale upload scheduler...", nil)
	s.cron.Stop()
}

func (s *StaleUploadScheduler) sweep() {
	cutoff := time.Now().Add(-s.staleAfter)

	affected, err := s.uploadRepo.FailStale(cutoff, staleUploadMessage)
	if err != nil {
		logger.Error("Stale upload sweep failed", err, nil)
		return
	}
	if affected > 0 {
		logger.Warn("Marked stale uploads as failed", map[string]interface{}{
			"count": affected,
		})
	}
}
