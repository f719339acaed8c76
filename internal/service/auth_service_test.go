package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eservicedesk/internal/config"
	"github.com/spec-kit/eservicedesk/internal/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

type fakeWebminRepo struct {
	creds map[string]*domain.WebminCredential
}

func (f *fakeWebminRepo) GetByUserID(ctx context.Context, userID string) (*domain.WebminCredential, error) {
	cred, ok := f.creds[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cred, nil
}

func (f *fakeWebminRepo) Upsert(ctx context.Context, cred *domain.WebminCredential) error {
	f.creds[cred.UserID] = cred
	return nil
}

func newAuthFixture() (*AuthService, *fakeWebminRepo) {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Simrs.BaseURL = "http://simrs.local/webmin"
	webmin := &fakeWebminRepo{creds: map[string]*domain.WebminCredential{}}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:   &fakeUserRepo{users: map[string]*domain.User{}},
		WebminRepo: webmin,
	})
	return svc, webmin
}

func TestStaffStoresOwnWebminCredentials(t *testing.T) {
	svc, webmin := newAuthFixture()
	staff := &domain.User{ID: "u-staff", Username: "sari.w", Role: domain.UserRoleStaff, Active: true}

	err := svc.UpsertWebmin(context.Background(), staff, "sari.w", "rahasia", "")
	require.NoError(t, err)
	require.Contains(t, webmin.creds, "u-staff")

	creds, err := svc.ResolveCredentials(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, "sari.w", creds.Username)
	assert.Equal(t, "rahasia", creds.Password)
	assert.Equal(t, "http://simrs.local/webmin", creds.BaseURL)
}

func TestStaffBaseURLOverrideForbidden(t *testing.T) {
	svc, webmin := newAuthFixture()
	staff := &domain.User{ID: "u-staff", Role: domain.UserRoleStaff, Active: true}

	err := svc.UpsertWebmin(context.Background(), staff, "sari.w", "rahasia", "http://elsewhere")
	require.Error(t, err)
	assert.NotContains(t, webmin.creds, "u-staff")
}

func TestAdminBaseURLOverrideHonored(t *testing.T) {
	svc, _ := newAuthFixture()
	admin := &domain.User{ID: "u-admin", Role: domain.UserRoleAdmin, Active: true}

	err := svc.UpsertWebmin(context.Background(), admin, "root.w", "rahasia", "http://10.0.0.2/webmin")
	require.NoError(t, err)

	creds, err := svc.ResolveCredentials(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2/webmin", creds.BaseURL)
}

func TestResolveCredentialsWithoutRowIsForbidden(t *testing.T) {
	svc, _ := newAuthFixture()
	staff := &domain.User{ID: "u-new", Role: domain.UserRoleStaff, Active: true}

	_, err := svc.ResolveCredentials(context.Background(), staff)
	assert.Error(t, err)
}
