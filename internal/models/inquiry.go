package models

import "time"

type Inquiry struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	PropertyID string    `gorm:"not null;index" json:"propertyId"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null" json:"email"`
	Phone      string    `gorm:"not null" json:"phone"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Inquiry) TableName() string {
	return "inquiries"
}

// PropertyRef is the slim property reference embedded in agent inquiry
// listings.
type PropertyRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type AgentInquiry struct {
	Inquiry
	Property PropertyRef `json:"property"`
}
