package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

// CatalogGormRepository holds what a business offers: its services and the
// hours its slot grid covers.
type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *CatalogGormRepository) GetServiceByID(
	ctx context.Context,
	businessID string,
	serviceID string,
) (*models.Service, bool, error) {

	var svc models.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &svc, true, nil
}

func (r *CatalogGormRepository) ListServices(
	ctx context.Context,
	businessID string,
	onlyActive bool,
) ([]models.Service, error) {

	q := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if onlyActive {
		q = q.Where("active = ?", true)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *CatalogGormRepository) CreateService(
	ctx context.Context,
	svc *models.Service,
) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(svc).Error
}

// --------------------------------------------------
// Business hours
// --------------------------------------------------

func (r *CatalogGormRepository) GetBusinessHours(
	ctx context.Context,
	businessID string,
) (*models.BusinessHours, bool, error) {

	var hours models.BusinessHours
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		First(&hours).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &hours, true, nil
}

func (r *CatalogGormRepository) SaveBusinessHours(
	ctx context.Context,
	hours *models.BusinessHours,
) error {
	hours.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_hour", "end_hour", "step_minutes", "updated_at"}),
		}).
		Create(hours).Error
}

var (
	_ domain.ServiceLookup       = (*CatalogGormRepository)(nil)
	_ domain.BusinessHoursLookup = (*CatalogGormRepository)(nil)
)
