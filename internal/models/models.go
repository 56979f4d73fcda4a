package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingActive   ListingStatus = "ACTIVE"
	ListingSold     ListingStatus = "SOLD"
	ListingInactive ListingStatus = "INACTIVE"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingSold, ListingInactive:
		return true
	}
	return false
}

type Listing struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID    string          `gorm:"type:varchar(64);not null;index" json:"sellerId"`
	ModelName   string          `gorm:"type:varchar(255);not null" json:"modelName"`
	BrandName   string          `gorm:"type:varchar(255);not null;index" json:"brandName"`
	Year        string          `gorm:"type:varchar(32);not null" json:"year"`
	FuelType    string          `gorm:"type:varchar(64);not null" json:"fuelType"`
	FipeCode    string          `gorm:"type:varchar(16);not null" json:"fipeCode"`
	Price       float64         `gorm:"not null" json:"price"`
	Mileage     string          `gorm:"type:varchar(32);not null" json:"mileage"`
	Condition   string          `gorm:"type:varchar(32);not null" json:"condition"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Optionals   map[string]bool `gorm:"serializer:json;type:text" json:"optionals"`
	Status      ListingStatus   `gorm:"type:varchar(16);not null;default:ACTIVE;index" json:"status"`
	PhotoKey    string          `gorm:"type:varchar(512)" json:"-"`
	HasPhoto    bool            `gorm:"-" json:"hasPhoto"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "vehicle_listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = ListingActive
	}
	return nil
}

func (l *Listing) AfterFind(tx *gorm.DB) error {
	l.HasPhoto = l.PhotoKey != ""
	return nil
}

type SearchHistory struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	VehicleType string    `gorm:"type:varchar(16);not null" json:"vehicleType"`
	BrandName   string    `gorm:"type:varchar(255);not null" json:"brandName"`
	ModelName   string    `gorm:"type:varchar(255);not null" json:"modelName"`
	Year        string    `gorm:"type:varchar(32);not null" json:"year"`
	Price       string    `gorm:"type:varchar(32);not null" json:"price"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&AccessLog{}, &Listing{}, &SearchHistory{}}
}
