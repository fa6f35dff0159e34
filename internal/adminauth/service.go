// Package adminauth provides username/password authentication for the
// single site administrator. Every way in is bcrypt against the stored
// hash; there is no secondary credential path.
package adminauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AdminStore defines the storage interface for admin accounts.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (store.Admin, error)
	GetAdminByID(ctx context.Context, id string) (store.Admin, error)
	CreateAdmin(ctx context.Context, admin store.Admin) (store.Admin, error)
	UpdateAdminPassword(ctx context.Context, id, passwordHash string) error
	TouchAdminLogin(ctx context.Context, id string) error
	CountAdmins(ctx context.Context) (int, error)
}

type Service struct {
	store AdminStore
}

func NewService(store AdminStore) *Service {
	return &Service{store: store}
}

// Login verifies the credentials and returns the admin record. Unknown
// usernames and wrong passwords produce the same error so callers leak
// nothing about which part failed.
func (s *Service) Login(ctx context.Context, username, password string) (store.Admin, error) {
	if username == "" || password == "" {
		return store.Admin{}, ErrInvalidCredentials
	}

	admin, err := s.store.GetAdminByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.Admin{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return store.Admin{}, ErrInvalidCredentials
	}

	if err := s.store.TouchAdminLogin(ctx, admin.ID); err != nil {
		return store.Admin{}, fmt.Errorf("record login: %w", err)
	}
	return admin, nil
}

// ChangePassword re-verifies the current password before replacing it.
func (s *Service) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	admin, err := s.store.GetAdminByID(ctx, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateAdminPassword(ctx, adminID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// EnsureAdmin creates the admin account on first boot when no accounts
// exist yet. It is a no-op once any admin is present.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.store.CreateAdmin(ctx, store.Admin{Username: username, PasswordHash: string(hash)}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
