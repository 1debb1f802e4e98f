package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Beachman4/properview/internal/models"
)

const (
	defaultAgentEmail    = "agent@properview.com"
	defaultAgentName     = "Example Agent"
	defaultAgentPassword = "test123"
)

// SeedDefaultAgent creates the demo agent account if no agent with its
// email exists yet.
func SeedDefaultAgent(db *gorm.DB) error {
	var agent models.Agent
	err := db.Where("email = ?", defaultAgentEmail).First(&agent).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up default agent: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAgentPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default agent password: %w", err)
	}

	return db.Create(&models.Agent{
		ID:       uuid.NewString(),
		Name:     defaultAgentName,
		Email:    defaultAgentEmail,
		Password: string(hash),
	}).Error
}
