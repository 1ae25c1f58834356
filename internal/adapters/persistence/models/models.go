package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// KYC statuses
const (
	KYCStatusPending   = "pending"
	KYCStatusSubmitted = "submitted"
	KYCStatusVerified  = "verified"
	KYCStatusRejected  = "rejected"
)

// KYC document types
const (
	DocumentTypePassport       = "passport"
	DocumentTypeNationalID     = "nationalId"
	DocumentTypeDrivingLicense = "drivingLicense"
)

// Address is the user's postal address, embedded in the users table
type Address struct {
	Street     string `gorm:"size:200" json:"street,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	State      string `gorm:"size:100" json:"state,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
	PostalCode string `gorm:"size:20" json:"postalCode,omitempty"`
}

// KYC is the identity-verification record, embedded in the users table so the
// credential and KYC state machines share one row and one row-level write.
// An empty Status means the user has never started KYC.
type KYC struct {
	Status           string     `gorm:"size:20;index" json:"status"`
	DocumentType     string     `gorm:"size:30" json:"documentType,omitempty"`
	DocumentNumber   string     `gorm:"size:100" json:"documentNumber,omitempty"`
	DocumentExpiry   *time.Time `json:"documentExpiry,omitempty"`
	DocumentFront    string     `gorm:"type:text" json:"documentFront,omitempty"`
	DocumentBack     string     `gorm:"type:text" json:"documentBack,omitempty"`
	Selfie           string     `gorm:"type:text" json:"selfie,omitempty"`
	VerificationDate *time.Time `json:"verificationDate"`
	RejectionReason  *string    `gorm:"size:500" json:"rejectionReason"`
}

// Started reports whether a KYC record has ever been materialized
func (k *KYC) Started() bool {
	return k.Status != ""
}

// EffectiveStatus returns the status, defaulting to pending before first submission
func (k *KYC) EffectiveStatus() string {
	if k.Status == "" {
		return KYCStatusPending
	}
	return k.Status
}

// User represents users table
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Email               string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string         `gorm:"size:255;not null" json:"-"`
	FirstName           string         `gorm:"size:50;not null" json:"firstName"`
	LastName            string         `gorm:"size:50;not null" json:"lastName"`
	DateOfBirth         time.Time      `json:"dateOfBirth"`
	PhoneNumber         string         `gorm:"size:20;not null" json:"phoneNumber"`
	Address             Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Role                string         `gorm:"size:20;default:'user';index" json:"role"`
	IsActive            bool           `gorm:"default:true;index" json:"isActive"`
	LastLogin           *time.Time     `json:"lastLogin"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	AccountLocked       bool           `gorm:"default:false" json:"-"`
	LockUntil           *time.Time     `json:"-"`
	KYC                 KYC            `gorm:"embedded;embeddedPrefix:kyc_" json:"-"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LockExpired reports whether the lockout window has passed. The window is
// open up to but not including lockUntil, so the account unlocks the instant
// now reaches it.
func (u *User) LockExpired(now time.Time) bool {
	return u.AccountLocked && u.LockUntil != nil && !u.LockUntil.After(now)
}

// UserResponse DTO - never carries the password hash or lockout internals
type UserResponse struct {
	ID          uint         `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	DateOfBirth time.Time    `json:"dateOfBirth"`
	PhoneNumber string       `json:"phoneNumber"`
	Address     Address      `json:"address"`
	Role        string       `json:"role"`
	IsActive    bool         `json:"isActive"`
	LastLogin   *time.Time   `json:"lastLogin"`
	KYC         *KYCResponse `json:"kyc,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// KYCResponse DTO
type KYCResponse struct {
	Status           string     `json:"status"`
	DocumentType     string     `json:"documentType,omitempty"`
	DocumentNumber   string     `json:"documentNumber,omitempty"`
	DocumentExpiry   *time.Time `json:"documentExpiry,omitempty"`
	DocumentFront    string     `json:"documentFront,omitempty"`
	DocumentBack     string     `json:"documentBack,omitempty"`
	Selfie           string     `json:"selfie,omitempty"`
	VerificationDate *time.Time `json:"verificationDate"`
	RejectionReason  *string    `json:"rejectionReason"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}

	if u.KYC.Started() {
		resp.KYC = u.KYC.ToResponse()
	}

	return resp
}

func (k *KYC) ToResponse() *KYCResponse {
	return &KYCResponse{
		Status:           k.EffectiveStatus(),
		DocumentType:     k.DocumentType,
		DocumentNumber:   k.DocumentNumber,
		DocumentExpiry:   k.DocumentExpiry,
		DocumentFront:    k.DocumentFront,
		DocumentBack:     k.DocumentBack,
		Selfie:           k.Selfie,
		VerificationDate: k.VerificationDate,
		RejectionReason:  k.RejectionReason,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs auto migration
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
	)
}
