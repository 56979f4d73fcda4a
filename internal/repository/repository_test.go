package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sdko-org/fipe-gateway/internal/database"
	"github.com/sdko-org/fipe-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func gol(seller string) *models.Listing {
	return &models.Listing{
		SellerID:  seller,
		ModelName: "Gol 1.0",
		BrandName: "VW - VolksWagen",
		Year:      "2014",
		FuelType:  "Gasolina",
		FipeCode:  "005340-6",
		Price:     42000,
		Mileage:   "80000",
		Condition: "good",
		Optionals: map[string]bool{"airConditioning": true},
	}
}

func TestListingCreateAndFind(t *testing.T) {
	repo := NewListingRepository(newRepositoryDBForTest(t))
	ctx := context.Background()

	l := gol("user-1")
	l.Status = models.ListingSold
	require.NoError(t, repo.Create(ctx, l))
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, models.ListingActive, l.Status)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gol 1.0", got.ModelName)
	assert.Equal(t, map[string]bool{"airConditioning": true}, got.Optionals)
	assert.False(t, got.HasPhoto)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListingCreateValidation(t *testing.T) {
	repo := NewListingRepository(newRepositoryDBForTest(t))

	l := gol("user-1")
	l.Price = 0
	assert.ErrorIs(t, repo.Create(context.Background(), l), ErrInvalidListing)

	l = gol("")
	assert.ErrorIs(t, repo.Create(context.Background(), l), ErrInvalidListing)
}

func TestListingFindActiveOrderAndFilter(t *testing.T) {
	repo := NewListingRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := gol("user-1")
	older.CreatedAt = base
	require.NoError(t, repo.Create(ctx, older))

	newer := gol("user-2")
	newer.BrandName = "Fiat"
	newer.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, newer))

	sold := gol("user-1")
	sold.CreatedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.Create(ctx, sold))
	status := models.ListingSold
	_, err := repo.Update(ctx, sold.ID, "user-1", ListingPatch{Status: &status})
	require.NoError(t, err)

	all, err := repo.FindActive(ctx, ListingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)

	fiat, err := repo.FindActive(ctx, ListingFilter{BrandName: "Fiat"})
	require.NoError(t, err)
	require.Len(t, fiat, 1)
	assert.Equal(t, newer.ID, fiat[0].ID)
}

func TestListingUpdateOwnership(t *testing.T) {
	repo := NewListingRepository(newRepositoryDBForTest(t))
	ctx := context.Background()

	l := gol("user-1")
	require.NoError(t, repo.Create(ctx, l))

	price := 39900.0
	_, err := repo.Update(ctx, l.ID, "user-2", ListingPatch{Price: &price})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := repo.Update(ctx, l.ID, "user-1", ListingPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 39900.0, updated.Price)

	bad := models.ListingStatus("GONE")
	_, err = repo.Update(ctx, l.ID, "user-1", ListingPatch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidListing)
}

func TestListingPhotoAndDelete(t *testing.T) {
	repo := NewListingRepository(newRepositoryDBForTest(t))
	ctx := context.Background()

	l := gol("user-1")
	require.NoError(t, repo.Create(ctx, l))
	require.NoError(t, repo.SetPhoto(ctx, l.ID, "user-1", "listings/"+l.ID+"/photo"))

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPhoto)

	_, err = repo.Delete(ctx, l.ID, "user-2")
	assert.ErrorIs(t, err, ErrForbidden)
	deleted, err := repo.Delete(ctx, l.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "listings/"+l.ID+"/photo", deleted.PhotoKey)

	_, err = repo.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestSearchHistoryListRecent(t *testing.T) {
	repo := NewSearchHistoryRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Add(ctx, &models.SearchHistory{
			UserID:      "user-1",
			VehicleType: "carros",
			BrandName:   "VW",
			ModelName:   fmt.Sprintf("model-%d", i),
			Year:        "2014",
			Price:       "R$ 42.367,00",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Add(ctx, &models.SearchHistory{UserID: "user-2", VehicleType: "motos", BrandName: "Honda", ModelName: "CG", Year: "2020", Price: "R$ 1,00"}))

	recent, err := repo.ListRecent(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "model-4", recent[0].ModelName)
	assert.Equal(t, "model-2", recent[2].ModelName)

	assert.Error(t, repo.Add(ctx, &models.SearchHistory{}))
}

func TestSearchHistoryDeleteOlderThan(t *testing.T) {
	repo := NewSearchHistoryRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Add(ctx, &models.SearchHistory{UserID: "u", VehicleType: "carros", BrandName: "a", ModelName: "b", Year: "c", Price: "d", CreatedAt: now.Add(-100 * 24 * time.Hour)}))
	require.NoError(t, repo.Add(ctx, &models.SearchHistory{UserID: "u", VehicleType: "carros", BrandName: "a", ModelName: "b", Year: "c", Price: "d", CreatedAt: now}))

	n, err := repo.DeleteOlderThan(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.ListRecent(ctx, "u", 10)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
