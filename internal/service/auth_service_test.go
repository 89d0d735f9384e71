package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/mocks"
	"parallel-lives-server/internal/models"
	"parallel-lives-server/internal/token"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockUserRepository) {
	t.Helper()
	tokens, err := token.NewManager(config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		Issuer:   "parallel-lives",
	}, zap.NewNop())
	require.NoError(t, err)

	users := new(mocks.MockUserRepository)
	return NewAuthService(users, tokens, zap.NewNop()), users
}

func TestAuthServiceRegister_Success(t *testing.T) {
	svc, users := newAuthService(t)
	userID := uuid.New()

	users.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = userID
		}).
		Return(nil).Once()

	user, accessToken, err := svc.Register(t.Context(), "  New.User@Example.COM ", "Sup3rSecret", "")

	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", user.Email)
	// Nickname falls back to the email local part.
	assert.Equal(t, "new.user", user.Nickname)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.NotEmpty(t, accessToken)
	// The stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Sup3rSecret")))
	users.AssertExpectations(t)
}

func TestAuthServiceRegister_Validation(t *testing.T) {
	svc, users := newAuthService(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "Sup3rSecret"},
		{"email without domain", "user@", "Sup3rSecret"},
		{"email with spaces", "us er@example.com", "Sup3rSecret"},
		{"short password", "user@example.com", "Ab1"},
		{"no uppercase", "user@example.com", "alllower1"},
		{"no lowercase", "user@example.com", "ALLUPPER1"},
		{"no digit", "user@example.com", "NoDigitsHere"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(t.Context(), tc.email, tc.password, "")
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestAuthServiceRegister_DuplicateEmail(t *testing.T) {
	svc, users := newAuthService(t)

	users.On("CreateUser", mock.Anything, mock.Anything).Return(models.ErrEmailAlreadyExists).Once()

	_, _, err := svc.Register(t.Context(), "taken@example.com", "Sup3rSecret", "nick")
	assert.ErrorIs(t, err, models.ErrEmailAlreadyExists)
}

func TestAuthServiceLogin_Success(t *testing.T) {
	svc, users := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Plan:         models.PlanFree,
	}
	users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(stored, nil).Once()

	user, accessToken, err := svc.Login(t.Context(), "User@Example.com", "Sup3rSecret")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, accessToken)
	users.AssertExpectations(t)
}

func TestAuthServiceLogin_WrongPassword(t *testing.T) {
	svc, users := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash)}
	users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(stored, nil).Once()

	_, _, err = svc.Login(t.Context(), "user@example.com", "wrong-password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthServiceLogin_UnknownEmailLooksLikeBadCredentials(t *testing.T) {
	svc, users := newAuthService(t)

	users.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, models.ErrUserNotFound).Once()

	_, _, err := svc.Login(t.Context(), "nobody@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
