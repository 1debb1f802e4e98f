package models

import "time"

type PropertyStatus string

const (
	StatusActive  PropertyStatus = "active"
	StatusPending PropertyStatus = "pending"
	StatusSold    PropertyStatus = "sold"
)

type Property struct {
	ID               string         `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"not null" json:"title"`
	Price            float64        `gorm:"not null" json:"price"`
	Address          string         `gorm:"not null" json:"address"`
	AddressLatitude  float64        `gorm:"not null" json:"addressLatitude"`
	AddressLongitude float64        `gorm:"not null" json:"addressLongitude"`
	Bedrooms         int            `gorm:"not null" json:"bedrooms"`
	Bathrooms        float64        `gorm:"not null" json:"bathrooms"`
	Description      string         `json:"description"`
	Status           PropertyStatus `gorm:"not null;default:active;index" json:"status"`
	Views            int64          `gorm:"not null;default:0" json:"views"`
	AgentID          string         `gorm:"not null;index" json:"agentId"`
	CreatedAt        time.Time      `json:"createdAt"`
}

func (Property) TableName() string {
	return "properties"
}

// PublicProperty is the anonymous-visitor view of a listing. It omits
// the owner reference and the analytics counter, which belong only on
// the agent dashboard.
type PublicProperty struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Price            float64   `json:"price"`
	Address          string    `json:"address"`
	AddressLatitude  float64   `json:"addressLatitude"`
	AddressLongitude float64   `json:"addressLongitude"`
	Bedrooms         int       `json:"bedrooms"`
	Bathrooms        float64   `json:"bathrooms"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (p Property) Public() PublicProperty {
	return PublicProperty{
		ID:               p.ID,
		Title:            p.Title,
		Price:            p.Price,
		Address:          p.Address,
		AddressLatitude:  p.AddressLatitude,
		AddressLongitude: p.AddressLongitude,
		Bedrooms:         p.Bedrooms,
		Bathrooms:        p.Bathrooms,
		Description:      p.Description,
		CreatedAt:        p.CreatedAt,
	}
}

// AgentProperty is the dashboard view of a property, carrying the
// inquiry count and the inquiries-per-view conversion rate.
type AgentProperty struct {
	Property
	Inquiries      int64   `json:"inquiries"`
	ConversionRate float64 `json:"conversionRate"`
}
