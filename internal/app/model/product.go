package model

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ID             uint                        `gorm:"primarykey" json:"-"`
	Code           string                      `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Name           string                      `gorm:"not null" json:"name"`
	Description    string                      `gorm:"type:text;default:''" json:"description"`
	Category       CategoryRef                 `gorm:"embedded;embeddedPrefix:category_" json:"category"`
	MetalType      MetalTypeRef                `gorm:"embedded;embeddedPrefix:metal_type_" json:"metalType"`
	Gender         string                      `gorm:"type:varchar(20);index" json:"gender,omitempty"`
	Weight         string                      `gorm:"type:varchar(50);default:''" json:"weight"` // free text, e.g. "3.5g"
	Price          float64                     `gorm:"not null;check:price >= 0" json:"price"`
	Images         datatypes.JSONSlice[string] `json:"images"`
	IsNewProduct   bool                        `gorm:"default:false" json:"isNewProduct"`
	IsOnSale       bool                        `gorm:"default:false" json:"isOnSale"`
	IsFeatured     bool                        `gorm:"default:false" json:"isFeatured"`
	AvailableSizes datatypes.JSONSlice[string] `json:"availableSizes"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// ProductSummary is the list projection; Images holds only the first image.
type ProductSummary struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Images       []string `json:"images"`
	IsFeatured   bool     `json:"isFeatured"`
	IsOnSale     bool     `json:"isOnSale"`
	IsNewProduct bool     `json:"isNewProduct"`
}

// Summary reduces a product to its list projection.
func (p *Product) Summary() ProductSummary {
	first := ""
	if len(p.Images) > 0 {
		first = p.Images[0]
	}
	return ProductSummary{
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Images:       []string{first},
		IsFeatured:   p.IsFeatured,
		IsOnSale:     p.IsOnSale,
		IsNewProduct: p.IsNewProduct,
	}
}

// Normalize backfills display names from the lookup tables and replaces nil
// slices with empty ones so responses always carry arrays.
func (p *Product) Normalize() {
	if p.Category.Code.IsValid() {
		p.Category.DisplayName = p.Category.Code.DisplayName()
	}
	if p.MetalType.Code.IsValid() {
		p.MetalType.DisplayName = p.MetalType.Code.DisplayName()
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	if p.AvailableSizes == nil {
		p.AvailableSizes = datatypes.JSONSlice[string]{}
	}
}
