package hero

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/storage"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const minPasswordLength = 6

// Notifier delivers a message to an email address or phone number.
type Notifier interface {
	Send(ctx context.Context, message, contact string) (notify.Notification, error)
}

// Service registers heroes and checks their credentials.
type Service struct {
	store    storage.Store
	clock    clock.Clock
	notifier Notifier
	logger   *zap.Logger
	cost     int
}

// New creates a hero Service. notifier may be nil.
func New(store storage.Store, clk clock.Clock, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates a hero account and sends a welcome message.
func (s *Service) Register(ctx context.Context, username, password, email, phone string) (*model.Hero, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if username == "" {
		return nil, model.ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, model.ErrWeakPassword
	}
	if notify.Classify(email) != notify.ContactEmail {
		return nil, model.ErrInvalidEmail
	}
	if phone != "" && notify.Classify(phone) != notify.ContactPhone {
		return nil, model.ErrInvalidPhone
	}

	// Check if username exists
	_, err := s.store.GetHeroByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrHeroNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hero := &model.Hero{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Phone:        phone,
		Level:        1,
		Class:        model.DefaultHeroClass,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.CreateHero(ctx, hero); err != nil {
		return nil, err
	}
	s.logger.Info("hero registered", zap.Int64("hero_id", hero.ID), zap.String("username", username))

	if s.notifier != nil {
		msg := fmt.Sprintf("Welcome to the Quest Guild, %s! Your adventure begins now.", username)
		if _, err := s.notifier.Send(ctx, msg, email); err != nil {
			s.logger.Warn("welcome notification failed", zap.Error(err))
		}
	}
	return hero, nil
}

// Login checks credentials and records the login time.
func (s *Service) Login(ctx context.Context, username, password string) (*model.Hero, error) {
	hero, err := s.store.GetHeroByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrHeroNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hero.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("failed login", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	hero.LastLoginAt = s.clock.Now()
	if err := s.store.UpdateHero(ctx, hero); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	s.logger.Info("hero logged in", zap.Int64("hero_id", hero.ID))
	return hero, nil
}

// AwardExperience adds experience and raises the hero level every 100 points.
func (s *Service) AwardExperience(ctx context.Context, heroID int64, points int) (*model.Hero, error) {
	hero, err := s.store.GetHero(ctx, heroID)
	if err != nil {
		return nil, err
	}
	hero.Experience += points
	hero.Level = 1 + hero.Experience/100
	if err := s.store.UpdateHero(ctx, hero); err != nil {
		return nil, err
	}
	return hero, nil
}
