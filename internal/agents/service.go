package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Beachman4/properview/internal/models"
)

var (
	// ErrInvalidCredentials deliberately covers both an unknown email and
	// a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound = errors.New("agent not found")
)

type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	logger *logrus.Logger
}

func NewService(db *gorm.DB, tokens *TokenManager, logger *logrus.Logger) *Service {
	return &Service{db: db, tokens: tokens, logger: logger}
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up agent: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(agent.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithField("agent_id", agent.ID).Info("Agent logged in")
	return token, nil
}

// Verify parses a session token and loads the agent it belongs to.
func (s *Service) Verify(ctx context.Context, token string) (*models.Agent, error) {
	agentID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return s.RetrieveByID(ctx, agentID)
}

func (s *Service) RetrieveByID(ctx context.Context, id string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve agent: %w", err)
	}
	return &agent, nil
}
