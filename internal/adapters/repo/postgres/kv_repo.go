package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/printorder/internal/domain"
)

type KVRepo struct{ db *gorm.DB }

func NewKVRepo(db *gorm.DB) *KVRepo { return &KVRepo{db: db} }

func (r *KVRepo) Get(ctx context.Context, key string) (string, error) {
	var e domain.StoreEntry
	if err := r.db.WithContext(ctx).First(&e, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return e.Value, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	e := domain.StoreEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (r *KVRepo) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&domain.StoreEntry{}).Error
}

// PurgeStale deletes entries not written since before. Sessions have no
// logout, so abandoned carts are only reclaimed this way.
func (r *KVRepo) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", before).Delete(&domain.StoreEntry{})
	return res.RowsAffected, res.Error
}
