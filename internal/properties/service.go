package properties

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Beachman4/properview/internal/models"
	"github.com/Beachman4/properview/internal/pagination"
	"github.com/Beachman4/properview/internal/viewcache"
)

// ErrNotFound covers both a missing property id and a property owned by a
// different agent; callers cannot distinguish the two.
var ErrNotFound = errors.New("property not found")

// Geocoder resolves free-text addresses and locations to lon/lat points.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (orb.Point, error)
}

type Service struct {
	db          *gorm.DB
	geocoder    Geocoder
	views       *viewcache.Cache
	logger      *logrus.Logger
	radiusMiles float64
}

func NewService(db *gorm.DB, geocoder Geocoder, views *viewcache.Cache, logger *logrus.Logger, radiusMiles float64) *Service {
	return &Service{
		db:          db,
		geocoder:    geocoder,
		views:       views,
		logger:      logger,
		radiusMiles: radiusMiles,
	}
}

// PropertyInput is the agent-supplied portion of a property record.
type PropertyInput struct {
	Title       string
	Price       float64
	Address     string
	Bedrooms    int
	Bathrooms   float64
	Description string
}

// UpdateInput extends PropertyInput with the listing status, which is
// only mutable after creation.
type UpdateInput struct {
	PropertyInput
	Status models.PropertyStatus
}

// Paginate returns a page of active properties matching the query. With a
// location it ranks by distance to the geocoded point; otherwise it
// filters and sorts through the ORM, fetching rows and the total inside
// one transaction so both observe the same snapshot.
func (s *Service) Paginate(ctx context.Context, q ListQuery) (pagination.Page[models.Property], error) {
	if q.Location != "" {
		return s.paginateByDistance(ctx, q)
	}

	scope := func(tx *gorm.DB) *gorm.DB {
		return applyRangeFilters(
			tx.Model(&models.Property{}).Where("status = ?", models.StatusActive), q)
	}

	var rows []models.Property
	var total int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx).Count(&total).Error; err != nil {
			return err
		}
		return scope(tx).
			Order(orderClause(q)).
			Limit(q.Limit).
			Offset((q.Page - 1) * q.Limit).
			Find(&rows).Error
	})
	if err != nil {
		return pagination.Page[models.Property]{}, fmt.Errorf("failed to list properties: %w", err)
	}

	return pagination.NewPage(rows, total, q.Page, q.Limit), nil
}

// paginateByDistance resolves the location and runs a raw query with the
// haversine distance in the projection, the WHERE clause, and the sort.
// The row fetch and the count are separate round-trips; under concurrent
// writes the total may lag the page by the delta of those writes, an
// accepted approximation for search results.
func (s *Service) paginateByDistance(ctx context.Context, q ListQuery) (pagination.Page[models.Property], error) {
	point, err := s.geocoder.Geocode(ctx, q.Location)
	if err != nil {
		return pagination.Page[models.Property]{}, fmt.Errorf("failed to geocode location %q: %w", q.Location, err)
	}

	conds := []string{"status = ?"}
	args := []interface{}{string(models.StatusActive)}
	conds, args = appendRangeConditions(conds, args, q)

	conds = append(conds, "haversine_miles(?, ?, address_latitude, address_longitude) <= ?")
	args = append(args, point.Lat(), point.Lon(), s.radiusMiles)

	where := strings.Join(conds, " AND ")

	fetchQuery := `
		SELECT properties.*,
		       haversine_miles(?, ?, address_latitude, address_longitude) AS distance_miles
		FROM properties
		WHERE ` + where + `
		ORDER BY distance_miles ASC
		LIMIT ? OFFSET ?`

	fetchArgs := make([]interface{}, 0, len(args)+4)
	fetchArgs = append(fetchArgs, point.Lat(), point.Lon())
	fetchArgs = append(fetchArgs, args...)
	fetchArgs = append(fetchArgs, q.Limit, (q.Page-1)*q.Limit)

	var rows []models.Property
	if err := s.db.WithContext(ctx).Raw(fetchQuery, fetchArgs...).Scan(&rows).Error; err != nil {
		return pagination.Page[models.Property]{}, fmt.Errorf("failed to run distance query: %w", err)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM properties WHERE " + where
	if err := s.db.WithContext(ctx).Raw(countQuery, args...).Scan(&total).Error; err != nil {
		return pagination.Page[models.Property]{}, fmt.Errorf("failed to count distance query: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"location":  q.Location,
		"latitude":  point.Lat(),
		"longitude": point.Lon(),
		"radius":    s.radiusMiles,
		"total":     total,
	}).Debug("Ran distance-ranked property search")

	return pagination.NewPage(rows, total, q.Page, q.Limit), nil
}

// PaginateByAgent lists an agent's own properties newest first, with no
// status restriction, hydrated with inquiry counts.
func (s *Service) PaginateByAgent(ctx context.Context, agentID string, page, limit int) (pagination.Page[models.AgentProperty], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Property{}).Where("agent_id = ?", agentID)
	}

	var rows []models.Property
	var total int64
	counts := make(map[string]int64)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx).Count(&total).Error; err != nil {
			return err
		}
		if err := scope(tx).
			Order("created_at DESC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&rows).Error; err != nil {
			return err
		}
		return s.inquiryCounts(tx, rows, counts)
	})
	if err != nil {
		return pagination.Page[models.AgentProperty]{}, fmt.Errorf("failed to list agent properties: %w", err)
	}

	hydrated := make([]models.AgentProperty, 0, len(rows))
	for _, row := range rows {
		hydrated = append(hydrated, hydrateProperty(row, counts[row.ID]))
	}

	return pagination.NewPage(hydrated, total, page, limit), nil
}

func (s *Service) inquiryCounts(tx *gorm.DB, rows []models.Property, counts map[string]int64) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var grouped []struct {
		PropertyID string
		Total      int64
	}
	err := tx.Model(&models.Inquiry{}).
		Select("property_id, COUNT(*) AS total").
		Where("property_id IN ?", ids).
		Group("property_id").
		Find(&grouped).Error
	if err != nil {
		return err
	}

	for _, g := range grouped {
		counts[g.PropertyID] = g.Total
	}
	return nil
}

// RetrieveByID fetches a single property for the public detail page.
func (s *Service) RetrieveByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve property: %w", err)
	}
	return &property, nil
}

// RetrieveByIDAndAgent fetches a property scoped to its owning agent.
func (s *Service) RetrieveByIDAndAgent(ctx context.Context, id, agentID string) (*models.AgentProperty, error) {
	property, err := s.ownedProperty(ctx, id, agentID)
	if err != nil {
		return nil, err
	}

	var inquiries int64
	if err := s.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("property_id = ?", id).
		Count(&inquiries).Error; err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}

	hydrated := hydrateProperty(*property, inquiries)
	return &hydrated, nil
}

// Create geocodes the address and persists a new active listing. A failed
// geocode aborts the creation; a property is never stored without fresh
// coordinates.
func (s *Service) Create(ctx context.Context, agentID string, input PropertyInput) (*models.AgentProperty, error) {
	point, err := s.geocoder.Geocode(ctx, input.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address %q: %w", input.Address, err)
	}

	property := models.Property{
		ID:               uuid.NewString(),
		Title:            input.Title,
		Price:            input.Price,
		Address:          input.Address,
		AddressLatitude:  point.Lat(),
		AddressLongitude: point.Lon(),
		Bedrooms:         input.Bedrooms,
		Bathrooms:        input.Bathrooms,
		Description:      input.Description,
		Status:           models.StatusActive,
		AgentID:          agentID,
	}

	if err := s.db.WithContext(ctx).Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"agent_id":    agentID,
	}).Info("Created property")

	hydrated := hydrateProperty(property, 0)
	return &hydrated, nil
}

// Update modifies an owned listing. The address is re-geocoded only when
// its text actually changed, saving a provider call on every other edit.
func (s *Service) Update(ctx context.Context, id, agentID string, input UpdateInput) (*models.AgentProperty, error) {
	property, err := s.ownedProperty(ctx, id, agentID)
	if err != nil {
		return nil, err
	}

	if input.Address != property.Address {
		point, err := s.geocoder.Geocode(ctx, input.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to geocode address %q: %w", input.Address, err)
		}
		property.AddressLatitude = point.Lat()
		property.AddressLongitude = point.Lon()
	}

	property.Title = input.Title
	property.Price = input.Price
	property.Address = input.Address
	property.Bedrooms = input.Bedrooms
	property.Bathrooms = input.Bathrooms
	property.Description = input.Description
	property.Status = input.Status

	if err := s.db.WithContext(ctx).Save(property).Error; err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return s.RetrieveByIDAndAgent(ctx, id, agentID)
}

// Delete removes an owned listing. A missing or foreign-owned id is an
// error, never a silent no-op.
func (s *Service) Delete(ctx context.Context, id, agentID string) error {
	property, err := s.ownedProperty(ctx, id, agentID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(property).Error; err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": id,
		"agent_id":    agentID,
	}).Info("Deleted property")

	return nil
}

// IncrementView bumps the view counter for a visitor unless the same
// (property, ip) pair was counted within the de-dup window. It reports
// whether an increment happened.
func (s *Service) IncrementView(ctx context.Context, id, ipAddress string) (bool, error) {
	if !s.views.Visit(id, ipAddress) {
		return false, nil
	}

	result := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment views: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, ErrNotFound
	}

	return true, nil
}

func (s *Service) ownedProperty(ctx context.Context, id, agentID string) (*models.Property, error) {
	var property models.Property
	err := s.db.WithContext(ctx).Where("id = ? AND agent_id = ?", id, agentID).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve property: %w", err)
	}
	return &property, nil
}

func hydrateProperty(property models.Property, inquiries int64) models.AgentProperty {
	var rate float64
	if property.Views > 0 && inquiries > 0 {
		rate = float64(inquiries) / float64(property.Views)
	}
	return models.AgentProperty{
		Property:       property,
		Inquiries:      inquiries,
		ConversionRate: rate,
	}
}
