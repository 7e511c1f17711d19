package models

import "time"

// Lead is a contact request captured from a listing page.
type Lead struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"type:varchar(150);not null" json:"name"`
	Email      string    `gorm:"type:varchar(200)" json:"email,omitempty"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	PropertyID *int64    `gorm:"index" json:"property_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}
