package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/invoiceno/domain"
	"github.com/smallbiznis/bullionbook/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Increment bumps the tenant's series and returns the new value. The UPDATE row
// lock serializes concurrent allocations until the caller's transaction ends.
func (r *repo) Increment(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, kind domain.Kind, now time.Time) (int64, error) {
	seed := domain.Sequence{TenantID: tenantID, Kind: kind, LastValue: 0, UpdatedAt: now}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, db.TranslateError(err, nil)
	}

	err := tx.WithContext(ctx).
		Model(&domain.Sequence{}).
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		UpdateColumns(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		}).Error
	if err != nil {
		return 0, db.TranslateError(err, nil)
	}

	var value int64
	err = tx.WithContext(ctx).
		Model(&domain.Sequence{}).
		Select("last_value").
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		Scan(&value).Error
	if err != nil {
		return 0, db.TranslateError(err, nil)
	}
	return value, nil
}
