package model

import "errors"

// Common errors used across the application
var (
	// Hero errors
	ErrHeroNotFound    = errors.New("hero not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidUsername = errors.New("username must not be empty")
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
	ErrInvalidEmail    = errors.New("email address is not valid")
	ErrInvalidPhone    = errors.New("phone number must have at least 10 digits")

	// Quest errors
	ErrQuestNotFound     = errors.New("quest not found")
	ErrInvalidTitle      = errors.New("quest title must be 1-100 characters")
	ErrInvalidPriority   = errors.New("priority must be Low, Medium or High")
	ErrQuestCompleted    = errors.New("quest is already completed")
	ErrChallengePending  = errors.New("quest requires a game challenge to be won first")
	ErrNoChallenge       = errors.New("quest has no game challenge")
	ErrInvalidGameTarget = errors.New("target level must be between 1 and 10")
)
