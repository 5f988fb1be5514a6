package models

import "time"

// Product is the durable catalog entity. SKUs are stored normalized
// (trimmed, lower-cased) and are unique case-insensitively.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SKU         string    `json:"sku" gorm:"column:sku;size:255;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:1024;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// ProductPatch enumerates the fields a partial update may change.
// Nil means "leave unchanged".
type ProductPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ProductFilter holds list query parameters.
type ProductFilter struct {
	SKU         string
	Name        string
	Description string
	Active      *bool
	Skip        int
	Limit       int
}
