package models

import "time"

// Property is a catalog listing. Optional numeric attributes are pointers
// so an absent facet value imposes no filter constraint.
type Property struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Facet attributes
	Operation string   `gorm:"type:varchar(20);index" json:"operation"`
	Type      string   `gorm:"type:varchar(30);index" json:"type"`
	Price     *float64 `gorm:"type:decimal(14,2);index" json:"price,omitempty"`
	Currency  string   `gorm:"type:varchar(3)" json:"currency,omitempty"`
	Bedrooms  *int     `gorm:"type:int" json:"bedrooms,omitempty"`
	Bathrooms *int     `gorm:"type:int" json:"bathrooms,omitempty"`
	Parking   *int     `gorm:"type:int" json:"parking,omitempty"`
	BuiltArea *float64 `gorm:"type:decimal(10,2)" json:"built_area,omitempty"`
	LandArea  *float64 `gorm:"type:decimal(10,2)" json:"land_area,omitempty"`

	// Geographic scope, denormalized the same way as LocationRecord
	State            string   `gorm:"type:varchar(100)" json:"state,omitempty"`
	StateSlug        string   `gorm:"type:varchar(100);index" json:"state_slug,omitempty"`
	Municipality     string   `gorm:"type:varchar(150)" json:"municipality,omitempty"`
	MunicipalitySlug string   `gorm:"type:varchar(150);index" json:"municipality_slug,omitempty"`
	Neighborhood     string   `gorm:"type:varchar(150)" json:"neighborhood,omitempty"`
	NeighborhoodSlug string   `gorm:"type:varchar(150);index" json:"neighborhood_slug,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`

	Views  int            `gorm:"type:int;default:0" json:"views"`
	Status PropertyStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PropertyStatus marks logical deletion.
type PropertyStatus string

const (
	PropertyStatusActive  PropertyStatus = "active"
	PropertyStatusRemoved PropertyStatus = "removed"
)

func (Property) TableName() string {
	return "properties"
}

// IsActive reports whether the listing is visible in search.
func (p *Property) IsActive() bool {
	return p.Status == "" || p.Status == PropertyStatusActive
}
