package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
	"github.com/Uddesh-18/CropSmart/internal/testutils"
)

func newAccountService(backend *testutils.MockBackend, store *testutils.MockSessionStore) *AccountService {
	svc := NewAccountService(backend, store, time.Hour, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestAccountService_Register(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("Register", mock.Anything, mock.MatchedBy(func(r entities.Registration) bool {
			return r.FirstName == "Asha" && r.Email == "asha@example.com"
		})).Return("u1", nil)

		id, err := newAccountService(backend, &testutils.MockSessionStore{}).Register(context.Background(), entities.Registration{
			FirstName: " Asha ", LastName: "Patil", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret1",
		})

		require.NoError(t, err)
		assert.Equal(t, "u1", id)
	})

	t.Run("password mismatch never reaches backend", func(t *testing.T) {
		backend := &testutils.MockBackend{}

		_, err := newAccountService(backend, &testutils.MockSessionStore{}).Register(context.Background(), entities.Registration{
			FirstName: "Asha", LastName: "Patil", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret2",
		})

		assert.Equal(t, entities.ErrPasswordMismatch, err)
		backend.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("backend rejects", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("Register", mock.Anything, mock.Anything).Return("", &entities.UpstreamError{Service: "backend", Status: 400, Message: "User already exists."})

		_, err := newAccountService(backend, &testutils.MockSessionStore{}).Register(context.Background(), entities.Registration{
			FirstName: "Asha", LastName: "Patil", Email: "asha@example.com", Password: "secret1", ConfirmPassword: "secret1",
		})

		var upstream *entities.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "User already exists.", upstream.Message)
	})
}

func TestAccountService_Login(t *testing.T) {
	creds := entities.Credentials{Email: "Asha@Example.com", Password: "secret1"}

	t.Run("creates session", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("Login", mock.Anything, creds).Return(entities.LoginResult{UserID: "u1", FullName: "Asha Patil"}, nil)
		store := &testutils.MockSessionStore{}
		store.On("Save", mock.Anything, mock.AnythingOfType("*entities.Session")).Return(nil)

		session, err := newAccountService(backend, store).Login(context.Background(), creds)

		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "u1", session.UserID)
		assert.Equal(t, "Asha Patil", session.FullName)
		assert.Equal(t, "asha@example.com", session.Email)
		assert.Equal(t, fixedNow.Add(time.Hour), session.ExpiresAt)
		store.AssertExpectations(t)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := newAccountService(&testutils.MockBackend{}, &testutils.MockSessionStore{}).Login(context.Background(),
			entities.Credentials{Email: "nope", Password: "secret1"})
		assert.Equal(t, entities.ErrInvalidEmail, err)
	})

	t.Run("missing user id", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("Login", mock.Anything, creds).Return(entities.LoginResult{FullName: "Asha Patil"}, nil)

		_, err := newAccountService(backend, &testutils.MockSessionStore{}).Login(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("store failure", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("Login", mock.Anything, creds).Return(entities.LoginResult{UserID: "u1"}, nil)
		store := &testutils.MockSessionStore{}
		store.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := newAccountService(backend, store).Login(context.Background(), creds)
		assert.ErrorContains(t, err, "failed to save session")
	})
}

func TestAccountService_ResolveSession(t *testing.T) {
	live := &entities.Session{Token: "t1", UserID: "u1", ExpiresAt: fixedNow.Add(time.Minute)}
	stale := &entities.Session{Token: "t2", UserID: "u1", ExpiresAt: fixedNow.Add(-time.Minute)}

	store := &testutils.MockSessionStore{}
	store.On("Get", mock.Anything, "t1").Return(live, nil)
	store.On("Get", mock.Anything, "t2").Return(stale, nil)
	store.On("Get", mock.Anything, "t3").Return(nil, entities.ErrSessionNotFound)
	store.On("Delete", mock.Anything, "t2").Return(nil)

	svc := newAccountService(&testutils.MockBackend{}, store)

	session, err := svc.ResolveSession(context.Background(), "t1")
	require.NoError(t, err)
	assert.Same(t, live, session)

	_, err = svc.ResolveSession(context.Background(), "t2")
	assert.ErrorIs(t, err, entities.ErrSessionExpired)
	store.AssertCalled(t, "Delete", mock.Anything, "t2")

	_, err = svc.ResolveSession(context.Background(), "t3")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)

	_, err = svc.ResolveSession(context.Background(), "")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestAccountService_Profile(t *testing.T) {
	session := &entities.Session{Token: "t1", UserID: "u1", FullName: "Asha Patil", Email: "asha@example.com"}

	t.Run("get uses session user", func(t *testing.T) {
		backend := &testutils.MockBackend{}
		backend.On("GetProfile", mock.Anything, "u1").Return(entities.Profile{UserID: "u1", FirstName: "Asha"}, nil)

		profile, err := newAccountService(backend, &testutils.MockSessionStore{}).Profile(context.Background(), session)

		require.NoError(t, err)
		assert.Equal(t, "Asha", profile.FirstName)
	})

	t.Run("update refreshes session", func(t *testing.T) {
		s := *session
		update := entities.ProfileUpdate{FirstName: "Asha", LastName: "Kulkarni", Email: "asha.k@example.com"}
		backend := &testutils.MockBackend{}
		backend.On("UpdateProfile", mock.Anything, "u1", update).Return(entities.Profile{
			UserID: "u1", FirstName: "Asha", LastName: "Kulkarni", Email: "asha.k@example.com",
		}, nil)
		store := &testutils.MockSessionStore{}
		store.On("Update", mock.Anything, &s).Return(nil)

		profile, err := newAccountService(backend, store).UpdateProfile(context.Background(), &s, update)

		require.NoError(t, err)
		assert.Equal(t, "Kulkarni", profile.LastName)
		assert.Equal(t, "Asha Kulkarni", s.FullName)
		assert.Equal(t, "asha.k@example.com", s.Email)
	})

	t.Run("update after logout keeps session gone", func(t *testing.T) {
		s := *session
		update := entities.ProfileUpdate{FirstName: "Asha", LastName: "Patil", Email: "asha@example.com"}
		backend := &testutils.MockBackend{}
		backend.On("UpdateProfile", mock.Anything, "u1", update).Return(entities.Profile{
			UserID: "u1", FirstName: "Asha", LastName: "Patil", Email: "asha@example.com",
		}, nil)
		store := &testutils.MockSessionStore{}
		store.On("Update", mock.Anything, &s).Return(entities.ErrSessionNotFound)

		_, err := newAccountService(backend, store).UpdateProfile(context.Background(), &s, update)

		require.NoError(t, err)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("update validation", func(t *testing.T) {
		_, err := newAccountService(&testutils.MockBackend{}, &testutils.MockSessionStore{}).UpdateProfile(context.Background(), session,
			entities.ProfileUpdate{FirstName: "Asha", LastName: "Patil", Email: "asha@example.com", Password: "123"})
		assert.Equal(t, entities.ErrPasswordTooShort, err)
	})
}

func TestAccountService_LogoutAndCleanup(t *testing.T) {
	store := &testutils.MockSessionStore{}
	store.On("Delete", mock.Anything, "t1").Return(nil)
	store.On("CleanupExpired", mock.Anything).Return(3, nil).Once()
	store.On("CleanupExpired", mock.Anything).Return(0, errors.New("boom")).Once()

	svc := newAccountService(&testutils.MockBackend{}, store)

	require.NoError(t, svc.Logout(context.Background(), &entities.Session{Token: "t1", UserID: "u1"}))
	require.NoError(t, svc.CleanupSessions(context.Background()))
	assert.ErrorContains(t, svc.CleanupSessions(context.Background()), "failed to clean up sessions")
	store.AssertExpectations(t)
}
