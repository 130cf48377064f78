package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/label-insight/pkg/errors"
)

func newTestService(repo Repository) *service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, newTestLogger()).(*service)
}

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:           "User@Example.com",
		Password:        "pass12",
		ConfirmPassword: "pass12",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.NotZero(t, view.ID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "pass12",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, resp.User.Email, refreshed.User.Email)

	account, err := svc.Account(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, view, account)
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	req := RegisterRequest{Email: "user@example.com", Password: "pass1234", ConfirmPassword: "pass1234"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.True(t, apperrors.IsCode(err, CodeEmailExists))
	require.Equal(t, "That email is already taken. Please choose a different one.", err.Error())
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"}},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "12345", ConfirmPassword: "12345"}},
		{"mismatch", RegisterRequest{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			require.True(t, apperrors.IsCode(err, CodeInvalidInput))
		})
	}
}

func TestService_LoginFailuresShareMessage(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "a@b.co", Password: "wrong-pass"},
		{Email: "missing@b.co", Password: "secret1"},
		{Email: "", Password: ""},
	} {
		_, err := svc.Login(context.Background(), req)
		require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
		require.Equal(t, "Login Unsuccessful. Please check email and password", err.Error())
	}
}

func TestService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestService_AccountNotFound(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Account(context.Background(), 42)
	require.True(t, apperrors.IsCode(err, CodeUserNotFound))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryRepo struct {
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (m *memoryRepo) Create(_ context.Context, email, passwordHash string) (User, error) {
	m.seq++
	user := User{
		ID:           m.seq,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}
