package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/company/domain"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/pkg/db"
	"github.com/smallbiznis/bullionbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type repo struct {
	db    *gorm.DB
	store repository.Repository[domain.CompanySettings]
}

func Provide(p Params) domain.Repository {
	return &repo{
		db: p.DB,
		store: repository.New[domain.CompanySettings](p.DB, repository.Options{
			Entity:   "company_settings",
			NotFound: domain.ErrNotFound,
			Log:      p.Log.Named("company.repository"),
			Recorder: p.Metrics,
		}),
	}
}

func (r *repo) Get(ctx context.Context, tenantID snowflake.ID) (*domain.CompanySettings, error) {
	return r.store.First(ctx, tenantID)
}

func (r *repo) Upsert(ctx context.Context, tenantID snowflake.ID, settings *domain.CompanySettings) error {
	settings.SetTenantID(tenantID)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"company_name", "address", "phone", "email", "gst_no", "logo_url", "updated_at",
			}),
		}).
		Create(settings).Error
	if err != nil {
		return db.TranslateError(err, nil)
	}
	return nil
}
