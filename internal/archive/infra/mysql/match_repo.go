package mysql

import (
	"context"
	"errors"

	"DeepHabitat/internal/archive"
	"DeepHabitat/modules/kit/errx"

	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Migrate 建表。
func (r *MatchRepository) Migrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errx.ErrUnavailable.WithCause(errors.New("mysql db is nil"))
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&matchRow{}); err != nil {
		return errx.ErrUnavailable.WithCause(err)
	}
	return nil
}

func (r *MatchRepository) Load(ctx context.Context, id int64) (*archive.MatchRecord, error) {
	if r == nil || r.db == nil {
		return nil, errx.ErrUnavailable.WithCause(errors.New("mysql db is nil"))
	}
	var row matchRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errx.ErrNotFound.WithData("match_id", id)
	}
	if err != nil {
		return nil, errx.ErrUnavailable.WithCause(err)
	}
	rec, err := rowToRecord(row)
	if err != nil {
		return nil, errx.ErrInternal.WithCause(err).WithData("match_id", id)
	}
	return rec, nil
}

// Save 按主键 upsert。
func (r *MatchRepository) Save(ctx context.Context, rec *archive.MatchRecord) error {
	if rec == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errx.ErrUnavailable.WithCause(errors.New("mysql db is nil"))
	}
	row, err := recordToRow(rec)
	if err != nil {
		return errx.ErrInternal.WithCause(err).WithData("match_id", rec.ID)
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return errx.ErrUnavailable.WithCause(err).WithData("match_id", rec.ID)
	}
	return nil
}
