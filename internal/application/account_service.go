package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

var ErrMissingUserID = errors.New("backend did not return a user id")

type AccountService struct {
	backend  ports.Backend
	sessions ports.SessionStore
	ttl      time.Duration
	now      func() time.Time
	logger   logger.Logger
}

func NewAccountService(backend ports.Backend, sessions ports.SessionStore, ttl time.Duration, log logger.Logger) *AccountService {
	return &AccountService{
		backend:  backend,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.Component(log, "account_service"),
	}
}

func (s *AccountService) Register(ctx context.Context, reg entities.Registration) (string, error) {
	if err := reg.Validate(); err != nil {
		return "", err
	}

	userID, err := s.backend.Register(ctx, reg)
	if err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("User registered")
	return userID, nil
}

// Login authenticates against the backend and opens a new session.
func (s *AccountService) Login(ctx context.Context, creds entities.Credentials) (*entities.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if result.UserID == "" {
		return nil, ErrMissingUserID
	}

	now := s.now()
	session := &entities.Session{
		Token:     uuid.New().String(),
		UserID:    result.UserID,
		FullName:  result.FullName,
		Email:     strings.ToLower(creds.Email),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.WithField("user_id", session.UserID).Info("User logged in")
	return session, nil
}

func (s *AccountService) Logout(ctx context.Context, session *entities.Session) error {
	if err := s.sessions.Delete(ctx, session.Token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.WithField("user_id", session.UserID).Info("User logged out")
	return nil
}

// ResolveSession returns the live session for token. Expired sessions are
// removed on sight.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (*entities.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, entities.ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warnf("Failed to delete expired session: %v", err)
		}
		return nil, entities.ErrSessionExpired
	}
	return session, nil
}

func (s *AccountService) Profile(ctx context.Context, session *entities.Session) (entities.Profile, error) {
	profile, err := s.backend.GetProfile(ctx, session.UserID)
	if err != nil {
		return entities.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile also refreshes the name and email carried by the session.
func (s *AccountService) UpdateProfile(ctx context.Context, session *entities.Session, update entities.ProfileUpdate) (entities.Profile, error) {
	if err := update.Validate(); err != nil {
		return entities.Profile{}, err
	}

	profile, err := s.backend.UpdateProfile(ctx, session.UserID, update)
	if err != nil {
		return entities.Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	session.FullName = profile.FullName()
	session.Email = profile.Email
	if err := s.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			s.logger.Debug("Session ended before profile update finished")
		} else {
			s.logger.Warnf("Failed to refresh session after profile update: %v", err)
		}
	}

	s.logger.WithField("user_id", session.UserID).Info("Profile updated")
	return profile, nil
}

// CleanupSessions is run by the scheduler.
func (s *AccountService) CleanupSessions(ctx context.Context) error {
	removed, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Infof("Removed %d expired sessions", removed)
	}
	return nil
}

func (s *AccountService) HealthCheck(ctx context.Context) error {
	if err := s.backend.HealthCheck(ctx); err != nil {
		return err
	}
	return s.sessions.HealthCheck(ctx)
}
