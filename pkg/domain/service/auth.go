package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"shop/pkg/domain/model"
)

var (
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const minPasswordLength = 8

type AuthService interface {
	Register(email, plainTextPassword string) (*model.User, error)
	Login(email, plainTextPassword string) (string, error)
	// Authenticate resolves a bearer token into the current active user.
	Authenticate(token string) (*model.User, error)
}

func NewAuthService(repo model.UserRepository, passManager model.PasswordManager, tokens model.TokenManager, dispatcher EventDispatcher) AuthService {
	return &authService{
		repo:        repo,
		passManager: passManager,
		tokens:      tokens,
		dispatcher:  dispatcher,
	}
}

type authService struct {
	repo        model.UserRepository
	passManager model.PasswordManager
	tokens      model.TokenManager
	dispatcher  EventDispatcher
}

func (s *authService) Register(email, plainTextPassword string) (*model.User, error) {
	if len(plainTextPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repo.FindByEmail(email); err == nil {
		return nil, model.ErrEmailTaken
	}

	hashedPassword, err := s.passManager.Hash(plainTextPassword)
	if err != nil {
		return nil, err
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             userID,
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{UserID: userID, Email: email})
	return user, nil
}

func (s *authService) Login(email, plainTextPassword string) (string, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !s.passManager.Verify(plainTextPassword, user.HashedPassword) {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", model.ErrUserInactive
	}

	return s.tokens.Issue(user.ID.String())
}

func (s *authService) Authenticate(token string) (*model.User, error) {
	subject, err := s.tokens.Decode(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.Find(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	return user, nil
}
