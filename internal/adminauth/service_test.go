package adminauth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdminStore struct {
	admins  map[string]store.Admin
	touched []string
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: make(map[string]store.Admin)}
}

func (f *fakeAdminStore) GetAdminByUsername(_ context.Context, username string) (store.Admin, error) {
	for _, a := range f.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return store.Admin{}, sql.ErrNoRows
}

func (f *fakeAdminStore) GetAdminByID(_ context.Context, id string) (store.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return store.Admin{}, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeAdminStore) CreateAdmin(_ context.Context, admin store.Admin) (store.Admin, error) {
	if admin.ID == "" {
		admin.ID = "admin_test"
	}
	f.admins[admin.ID] = admin
	return admin, nil
}

func (f *fakeAdminStore) UpdateAdminPassword(_ context.Context, id, hash string) error {
	a, ok := f.admins[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = hash
	f.admins[id] = a
	return nil
}

func (f *fakeAdminStore) TouchAdminLogin(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeAdminStore) CountAdmins(_ context.Context) (int, error) {
	return len(f.admins), nil
}

func seedAdmin(t *testing.T, f *fakeAdminStore, username, password string) store.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin, _ := f.CreateAdmin(context.Background(), store.Admin{Username: username, PasswordHash: string(hash)})
	return admin
}

func TestLoginSuccess(t *testing.T) {
	fs := newFakeAdminStore()
	admin := seedAdmin(t, fs, "ArunKumar", "correct horse")
	svc := NewService(fs)

	got, err := svc.Login(context.Background(), "ArunKumar", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != admin.ID {
		t.Fatalf("logged in as %s, want %s", got.ID, admin.ID)
	}
	if len(fs.touched) != 1 {
		t.Fatalf("expected last_login touch, got %d", len(fs.touched))
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	fs := newFakeAdminStore()
	seedAdmin(t, fs, "ArunKumar", "correct horse")
	svc := NewService(fs)

	_, errWrong := svc.Login(context.Background(), "ArunKumar", "nope")
	_, errUnknown := svc.Login(context.Background(), "nobody", "nope")

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials for both, got %v / %v", errWrong, errUnknown)
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	svc := NewService(newFakeAdminStore())
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	fs := newFakeAdminStore()
	admin := seedAdmin(t, fs, "ArunKumar", "old password")
	svc := NewService(fs)

	if err := svc.ChangePassword(context.Background(), admin.ID, "old password", "new password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ArunKumar", "new password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ArunKumar", "old password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	fs := newFakeAdminStore()
	admin := seedAdmin(t, fs, "ArunKumar", "old password")
	svc := NewService(fs)

	err := svc.ChangePassword(context.Background(), admin.ID, "guess", "new password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	fs := newFakeAdminStore()
	admin := seedAdmin(t, fs, "ArunKumar", "old password")
	svc := NewService(fs)

	if err := svc.ChangePassword(context.Background(), admin.ID, "old password", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
}

func TestEnsureAdminOnlyOnFirstBoot(t *testing.T) {
	fs := newFakeAdminStore()
	svc := NewService(fs)

	if err := svc.EnsureAdmin(context.Background(), "ArunKumar", "first password"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if n, _ := fs.CountAdmins(context.Background()); n != 1 {
		t.Fatalf("admins = %d, want 1", n)
	}

	// Second call must not create another account or reset the password.
	if err := svc.EnsureAdmin(context.Background(), "Someone", "other password"); err != nil {
		t.Fatalf("EnsureAdmin second call: %v", err)
	}
	if n, _ := fs.CountAdmins(context.Background()); n != 1 {
		t.Fatalf("admins after second call = %d, want 1", n)
	}
}
