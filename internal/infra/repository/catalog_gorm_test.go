package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

func newTestRepo(t *testing.T) *CatalogGormRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Service{}, &models.BusinessHours{}))
	return NewCatalogGormRepository(db)
}

func TestServices(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cut := &models.Service{BusinessID: "biz-1", Name: "Haircut", DurationMin: 30, Price: 40, Active: true}
	require.NoError(t, repo.CreateService(ctx, cut))
	require.NotEmpty(t, cut.ID)

	require.NoError(t, repo.CreateService(ctx, &models.Service{ID: "beard", BusinessID: "biz-1", Name: "Beard", DurationMin: 20, Active: true}))
	require.NoError(t, repo.CreateService(ctx, &models.Service{ID: "other", BusinessID: "biz-2", Name: "Color", DurationMin: 90, Active: true}))

	t.Run("found", func(t *testing.T) {
		svc, found, err := repo.GetServiceByID(ctx, "biz-1", cut.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 30, svc.DurationMin)
	})

	t.Run("other business is not found", func(t *testing.T) {
		svc, found, err := repo.GetServiceByID(ctx, "biz-1", "other")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, svc)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		list, err := repo.ListServices(ctx, "biz-1", false)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Beard", list[0].Name)
		assert.Equal(t, "Haircut", list[1].Name)
	})
}

func TestBusinessHours(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, found, err := repo.GetBusinessHours(ctx, "biz-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SaveBusinessHours(ctx, &models.BusinessHours{BusinessID: "biz-1", StartHour: 8, EndHour: 17, StepMinutes: 15}))
	require.NoError(t, repo.SaveBusinessHours(ctx, &models.BusinessHours{BusinessID: "biz-1", StartHour: 10, EndHour: 20, StepMinutes: 30}))

	hours, found, err := repo.GetBusinessHours(ctx, "biz-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, hours.StartHour)
	assert.Equal(t, 20, hours.EndHour)
	assert.Equal(t, 30, hours.StepMinutes)
}
