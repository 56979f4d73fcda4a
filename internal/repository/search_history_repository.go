package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sdko-org/fipe-gateway/internal/models"
	"gorm.io/gorm"
)

type SearchHistoryRepository struct {
	db *gorm.DB
}

func NewSearchHistoryRepository(db *gorm.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

func (r *SearchHistoryRepository) Add(ctx context.Context, entry *models.SearchHistory) error {
	if entry.UserID == "" {
		return fmt.Errorf("add search history: user is required")
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("add search history: %w", err)
	}
	return nil
}

// ListRecent returns the user's latest searches, newest first.
func (r *SearchHistoryRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.SearchHistory, error) {
	var entries []models.SearchHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	return entries, nil
}

func (r *SearchHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SearchHistory{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune search history: %w", res.Error)
	}
	return res.RowsAffected, nil
}
