package inquiries

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Beachman4/properview/internal/models"
	"github.com/Beachman4/properview/internal/pagination"
)

// ErrPropertyNotFound is returned when an inquiry targets a property id
// that does not exist.
var ErrPropertyNotFound = errors.New("property not found")

type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// SubmitInput is the visitor-supplied contact form payload.
type SubmitInput struct {
	PropertyID string
	Name       string
	Email      string
	Phone      string
	Message    string
}

// Submit records a visitor inquiry against an existing property.
// Inquiries are immutable once created.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*models.Inquiry, error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", input.PropertyID).
		Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check property: %w", err)
	}
	if exists == 0 {
		return nil, ErrPropertyNotFound
	}

	inquiry := models.Inquiry{
		ID:         uuid.NewString(),
		PropertyID: input.PropertyID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
	}

	if err := s.db.WithContext(ctx).Create(&inquiry).Error; err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"inquiry_id":  inquiry.ID,
		"property_id": inquiry.PropertyID,
	}).Info("Inquiry submitted")

	return &inquiry, nil
}

// inquiryRow carries the joined property title alongside the inquiry.
type inquiryRow struct {
	models.Inquiry
	PropertyTitle string
}

// PaginateByAgent lists inquiries against the agent's properties, newest
// first, each row carrying a slim reference to its property. An optional
// propertyID narrows the listing to a single property.
func (s *Service) PaginateByAgent(ctx context.Context, agentID string, page, limit int, propertyID string) (pagination.Page[models.AgentInquiry], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		q := tx.Model(&models.Inquiry{}).
			Joins("JOIN properties ON properties.id = inquiries.property_id").
			Where("properties.agent_id = ?", agentID)
		if propertyID != "" {
			q = q.Where("inquiries.property_id = ?", propertyID)
		}
		return q
	}

	var rows []inquiryRow
	var total int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx).Count(&total).Error; err != nil {
			return err
		}
		return scope(tx).
			Select("inquiries.*, properties.title AS property_title").
			Order("inquiries.created_at DESC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&rows).Error
	})
	if err != nil {
		return pagination.Page[models.AgentInquiry]{}, fmt.Errorf("failed to list inquiries: %w", err)
	}

	hydrated := make([]models.AgentInquiry, 0, len(rows))
	for _, row := range rows {
		hydrated = append(hydrated, models.AgentInquiry{
			Inquiry: row.Inquiry,
			Property: models.PropertyRef{
				ID:    row.PropertyID,
				Title: row.PropertyTitle,
			},
		})
	}

	return pagination.NewPage(hydrated, total, page, limit), nil
}
