package config

import (
	"log"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin account from ADMIN_EMAIL /
// ADMIN_PASSWORD. Without an admin account nobody can review KYC submissions.
func (s *Seeder) seedAdminUser() error {
	if s.cfg.Admin.Email == "" || s.cfg.Admin.Password == "" {
		return nil // No bootstrap admin configured
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:       s.cfg.Admin.Email,
		Password:    hashedPassword,
		FirstName:   "System",
		LastName:    "Administrator",
		DateOfBirth: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "+10000000000",
		Role:        models.RoleAdmin,
		IsActive:    true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Bootstrap admin created: %s", admin.Email)
	return nil
}
