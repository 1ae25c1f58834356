package services

import (
	"context"
	"log"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs nightly housekeeping: expired refresh tokens are purged
// and lockout flags whose window has long passed are cleared. The lazy
// expiry check at login remains authoritative; this only keeps rows from
// sitting flagged forever.
type CronService struct {
	db               *gorm.DB
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB, refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		db:               db,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start schedules the cleanup jobs (03:00 daily)
func (s *CronService) Start() {
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)
	s.cron.AddFunc("0 3 * * *", s.clearStaleLocks)
	s.cron.Start()
	log.Println("🚀 CronService started (cleanup at 03:00 daily)")
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Purged %d expired refresh tokens", deleted)
	}
}

func (s *CronService) clearStaleLocks() {
	res := s.db.Model(&models.User{}).
		Where("account_locked = ? AND lock_until < ?", true, time.Now()).
		Updates(map[string]interface{}{
			"account_locked":        false,
			"failed_login_attempts": 0,
			"lock_until":            nil,
		})
	if res.Error != nil {
		log.Printf("❌ Stale lock cleanup error: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 Cleared %d stale account locks", res.RowsAffected)
	}
}
