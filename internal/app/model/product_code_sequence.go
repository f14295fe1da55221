package model

import "time"

// ProductCodeSequence stores the last sequence issued per category.
type ProductCodeSequence struct {
	CategoryCode CategoryCode `gorm:"primaryKey;type:varchar(8)" json:"categoryCode"`
	LastValue    int64        `gorm:"not null;default:0" json:"lastValue"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (ProductCodeSequence) TableName() string {
	return "product_code_sequences"
}
