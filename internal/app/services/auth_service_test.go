package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/auth"
)

// fakeAuthUserStore keeps registered users in memory.
type fakeAuthUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeAuthUserStore() *fakeAuthUserStore {
	return &fakeAuthUserStore{users: map[int64]*models.User{}}
}

func (f *fakeAuthUserStore) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	for _, existing := range f.users {
		if existing.DNI == user.DNI {
			return 0, apperrors.ErrDNIAlreadyExists
		}
		if existing.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeAuthUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeAuthUserStore) GetUserByDNI(ctx context.Context, dni string) (*models.User, error) {
	for _, user := range f.users {
		if user.DNI == dni {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeAuthUserStore) SetVerificationCode(ctx context.Context, id int64, code string, expires time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.VerificationCode = &code
	user.VerificationExpires = &expires
	return nil
}

func (f *fakeAuthUserStore) MarkVerified(ctx context.Context, id int64) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpires = nil
	return nil
}

// fakeMessenger records every delivery.
type fakeMessenger struct {
	sentCodes []string
	sentTo    []string
}

func (f *fakeMessenger) Init(ctx context.Context) error     { return nil }
func (f *fakeMessenger) Shutdown(ctx context.Context) error { return nil }

func (f *fakeMessenger) SendMessage(ctx context.Context, phone, message string) error {
	f.sentTo = append(f.sentTo, phone)
	return nil
}

func (f *fakeMessenger) SendVerificationCode(ctx context.Context, phone, code string) error {
	f.sentTo = append(f.sentTo, phone)
	f.sentCodes = append(f.sentCodes, code)
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *fakeAuthUserStore, *fakeMessenger) {
	t.Helper()
	store := newFakeAuthUserStore()
	messenger := &fakeMessenger{}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "campusvirtual.test",
	})
	return NewAuthService(store, jwtService, messenger), store, messenger
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:        "Juana Pérez",
		Email:       "Juana@Example.com",
		DNI:         "30123456",
		Password:    "secreto-largo",
		PhoneCode:   "54",
		PhoneArea:   "11",
		PhoneNumber: "55556666",
		Birthdate:   "1990-05-20",
	}
}

func TestRegisterCreatesUnverifiedStudent(t *testing.T) {
	ctx := context.Background()
	svc, store, messenger := newAuthFixture(t)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, user.Role)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "juana@example.com", user.Email)
	require.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, 6)
	require.NotNil(t, user.Birthdate)
	assert.Equal(t, 1990, user.Birthdate.Year())

	require.Len(t, messenger.sentCodes, 1)
	assert.Equal(t, *user.VerificationCode, messenger.sentCodes[0])
	assert.Equal(t, "541155556666", messenger.sentTo[0])

	stored, err := store.GetUserByDNI(ctx, "30123456")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.Password, "secreto-largo"))
}

func TestRegisterValidatesDNI(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	req := registerRequest()
	req.DNI = "abc123"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Unverified accounts cannot log in
	_, err = svc.Login(ctx, "30123456", "secreto-largo")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotVerified)

	require.NoError(t, svc.Verify(ctx, "30123456", *user.VerificationCode))

	resp, err := svc.Login(ctx, "30123456", "secreto-largo")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, string(models.RoleStudent), resp.User.Role)

	// Wrong password and unknown DNI both collapse to the same error
	_, err = svc.Login(ctx, "30123456", "otra-clave")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "99999999", "secreto-largo")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestVerifyRejectsBadOrExpiredCode(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, "30123456", "000000"), apperrors.ErrInvalidVerifyCode)

	expired := time.Now().Add(-time.Minute)
	user.VerificationExpires = &expired
	assert.ErrorIs(t, svc.Verify(ctx, "30123456", *user.VerificationCode), apperrors.ErrInvalidVerifyCode)

	fresh := time.Now().Add(10 * time.Minute)
	user.VerificationExpires = &fresh
	require.NoError(t, svc.Verify(ctx, "30123456", *user.VerificationCode))

	stored, err := store.GetUserByDNI(ctx, "30123456")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationCode)

	// Verifying twice is a conflict
	assert.ErrorIs(t, svc.Verify(ctx, "30123456", "123456"), apperrors.ErrAlreadyVerified)
}

func TestResendCodeIssuesFreshCode(t *testing.T) {
	ctx := context.Background()
	svc, store, messenger := newAuthFixture(t)

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	firstExpiry := *user.VerificationExpires

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.ResendCode(ctx, "30123456"))

	stored, err := store.GetUserByDNI(ctx, "30123456")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
	assert.True(t, stored.VerificationExpires.After(firstExpiry))
	assert.Len(t, messenger.sentCodes, 2)

	require.NoError(t, svc.Verify(ctx, "30123456", *stored.VerificationCode))
	assert.ErrorIs(t, svc.ResendCode(ctx, "30123456"), apperrors.ErrAlreadyVerified)
}
