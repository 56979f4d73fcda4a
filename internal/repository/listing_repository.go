package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdko-org/fipe-gateway/internal/models"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrForbidden       = errors.New("listing belongs to another seller")
	ErrInvalidListing  = errors.New("invalid listing")
)

type ListingFilter struct {
	BrandName string
	SellerID  string
	Limit     int
}

// ListingPatch holds the fields a seller may change. Nil fields are left as is.
type ListingPatch struct {
	Price       *float64              `json:"price"`
	Mileage     *string               `json:"mileage"`
	Condition   *string               `json:"condition"`
	Description *string               `json:"description"`
	Optionals   map[string]bool       `json:"optionals"`
	Status      *models.ListingStatus `json:"status"`
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	if err := validateListing(l); err != nil {
		return err
	}
	l.ID = ""
	l.Status = models.ListingActive
	l.PhotoKey = ""
	if l.Optionals == nil {
		l.Optionals = map[string]bool{}
	}
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// FindActive returns active listings, newest first.
func (r *ListingRepository) FindActive(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.ListingActive)
	if f.BrandName != "" {
		q = q.Where("brand_name = ?", f.BrandName)
	}
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var listings []models.Listing
	if err := q.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return &l, nil
}

func (r *ListingRepository) Update(ctx context.Context, id, sellerID string, patch ListingPatch) (*models.Listing, error) {
	l, err := r.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	if patch.Price != nil {
		l.Price = *patch.Price
	}
	if patch.Mileage != nil {
		l.Mileage = *patch.Mileage
	}
	if patch.Condition != nil {
		l.Condition = *patch.Condition
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.Optionals != nil {
		l.Optionals = patch.Optionals
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidListing, *patch.Status)
		}
		l.Status = *patch.Status
	}
	if err := validateListing(l); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, fmt.Errorf("update listing %s: %w", id, err)
	}
	return l, nil
}

func (r *ListingRepository) SetPhoto(ctx context.Context, id, sellerID, key string) error {
	l, err := r.owned(ctx, id, sellerID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(l).Update("photo_key", key).Error; err != nil {
		return fmt.Errorf("set listing photo %s: %w", id, err)
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id, sellerID string) (*models.Listing, error) {
	l, err := r.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(l).Error; err != nil {
		return nil, fmt.Errorf("delete listing %s: %w", id, err)
	}
	return l, nil
}

func (r *ListingRepository) owned(ctx context.Context, id, sellerID string) (*models.Listing, error) {
	l, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, ErrForbidden
	}
	return l, nil
}

func validateListing(l *models.Listing) error {
	switch {
	case l.SellerID == "":
		return fmt.Errorf("%w: seller is required", ErrInvalidListing)
	case l.BrandName == "" || l.ModelName == "" || l.Year == "":
		return fmt.Errorf("%w: brand, model and year are required", ErrInvalidListing)
	case l.Price <= 0:
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidListing)
	}
	return nil
}
