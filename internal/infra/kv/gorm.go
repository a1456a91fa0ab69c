package kv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/agenda-engine/internal/models"
)

// Gorm stores blobs in the kv_entries table.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Load(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := g.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (g *Gorm) Save(ctx context.Context, key string, data []byte) error {
	entry := models.KVEntry{
		Key:   key,
		Value: datatypes.JSON(data),
	}

	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

var _ Store = (*Gorm)(nil)
