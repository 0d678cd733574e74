package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/security"
)

type fakeAuthUsers struct {
	fakeUsers
	byEmail map[string]*domain.User
	created []*domain.User
}

func (f *fakeAuthUsers) Create(ctx context.Context, u *domain.User) error {
	f.created = append(f.created, u)
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeAuthUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.byEmail[email], nil
}

func newAuthFixture() (*AuthService, *fakeAuthUsers) {
	users := &fakeAuthUsers{byEmail: map[string]*domain.User{}}
	svc := NewAuthService(users, security.NewBcryptService(), security.NewJWTService("test-secret", 1))
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users := newAuthFixture()

	res, err := svc.Register(context.Background(), "Dev@Example.com", "dev", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.TierFree, res.Tier)

	require.Len(t, users.created, 1)
	assert.Equal(t, "dev@example.com", users.created[0].Email)
	assert.NotEqual(t, "correct horse", users.created[0].PasswordHash)

	login, err := svc.Login(context.Background(), "dev@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, res.UserID, login.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "dev@example.com", "dev", "correct horse")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dev@example.com", "other", "another pass")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "dev@example.com", "dev", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "dev@example.com", "dev", "correct horse")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "dev@example.com", "wrong horse")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
