package models

// DefaultCategory is assigned to services and expenses created without one.
const DefaultCategory = "General"

// Service is one entry of a tenant's price catalogue
type Service struct {
	TenantModel
	Name          string  `json:"name" db:"name"`
	OriginalPrice float64 `json:"originalPrice" db:"original_price"`
	SellPrice     float64 `json:"sellPrice" db:"sell_price"`
	Duration      int     `json:"duration,omitempty" db:"duration"` // minutes
	Category      string  `json:"category" db:"category"`
}
