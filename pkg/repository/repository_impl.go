package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	obslogger "github.com/smallbiznis/bullionbook/internal/observability/logger"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/db"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errTenantRequired = apperror.New(apperror.KindUnauthenticated, "tenant_required")

// Options names the entity and the errors a store reports for it.
type Options struct {
	Entity       string
	NotFound     error
	AccessDenied error
	Conflict     error
	Log          *zap.Logger
	Recorder     AccessDeniedRecorder
}

type store[T any, PT TenantScoped[T]] struct {
	db   *gorm.DB
	opts Options
}

func New[T any, PT TenantScoped[T]](conn *gorm.DB, opts Options) Repository[T] {
	if opts.Entity == "" {
		opts.Entity = "record"
	}
	if opts.NotFound == nil {
		opts.NotFound = apperror.New(apperror.KindNotFound, opts.Entity+"_not_found")
	}
	if opts.AccessDenied == nil {
		opts.AccessDenied = apperror.New(apperror.KindAccessDenied, opts.Entity+"_access_denied")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &store[T, PT]{db: conn, opts: opts}
}

func (r *store[T, PT]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T, PT]{db: tx, opts: r.opts}
}

func (r *store[T, PT]) Insert(ctx context.Context, tenantID snowflake.ID, resource *T) error {
	if tenantID == 0 {
		return errTenantRequired
	}
	PT(resource).SetTenantID(tenantID)
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		if db.IsDuplicateKeyErr(err) && r.opts.Conflict != nil {
			return r.opts.Conflict
		}
		return db.TranslateError(err, nil)
	}
	return nil
}

func (r *store[T, PT]) Get(ctx context.Context, tenantID, id snowflake.ID, opts ...option.QueryOption) (*T, error) {
	if tenantID == 0 {
		return nil, errTenantRequired
	}
	var out T
	stmt := r.scoped(ctx, tenantID, opts...).Where("id = ?", id)
	err := stmt.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.classifyMissing(ctx, tenantID, id)
	}
	if err != nil {
		return nil, db.TranslateError(err, r.opts.NotFound)
	}
	return &out, nil
}

func (r *store[T, PT]) First(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) (*T, error) {
	if tenantID == 0 {
		return nil, errTenantRequired
	}
	var out T
	if err := r.scoped(ctx, tenantID, opts...).Take(&out).Error; err != nil {
		return nil, db.TranslateError(err, r.opts.NotFound)
	}
	return &out, nil
}

func (r *store[T, PT]) List(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) ([]*T, error) {
	if tenantID == 0 {
		return nil, errTenantRequired
	}
	var out []*T
	if err := r.scoped(ctx, tenantID, opts...).Find(&out).Error; err != nil {
		return nil, db.TranslateError(err, nil)
	}
	return out, nil
}

// Update applies patch to the row. Columns outside patch are left untouched.
func (r *store[T, PT]) Update(ctx context.Context, tenantID, id snowflake.ID, patch map[string]any) error {
	if tenantID == 0 {
		return errTenantRequired
	}
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(patch)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) && r.opts.Conflict != nil {
			return r.opts.Conflict
		}
		return db.TranslateError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return r.classifyMissing(ctx, tenantID, id)
	}
	return nil
}

func (r *store[T, PT]) Delete(ctx context.Context, tenantID, id snowflake.ID) error {
	if tenantID == 0 {
		return errTenantRequired
	}
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(new(T))
	if res.Error != nil {
		return db.TranslateError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return r.classifyMissing(ctx, tenantID, id)
	}
	return nil
}

func (r *store[T, PT]) Count(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) (int64, error) {
	if tenantID == 0 {
		return 0, errTenantRequired
	}
	var count int64
	if err := r.scoped(ctx, tenantID, opts...).Count(&count).Error; err != nil {
		return 0, db.TranslateError(err, nil)
	}
	return count, nil
}

func (r *store[T, PT]) scoped(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) *gorm.DB {
	stmt := r.db.WithContext(ctx).Model(new(T)).Where("tenant_id = ?", tenantID)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}

// classifyMissing tells an absent id apart from one owned by another tenant.
func (r *store[T, PT]) classifyMissing(ctx context.Context, tenantID, id snowflake.ID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return db.TranslateError(err, nil)
	}
	if count == 0 {
		return r.opts.NotFound
	}

	obslogger.WithContext(ctx, r.opts.Log).Warn("cross-tenant access denied",
		zap.String("entity", r.opts.Entity),
		zap.String("resource_id", id.String()),
		zap.String("requesting_tenant_id", tenantID.String()),
	)
	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordAccessDenied(ctx, r.opts.Entity)
	}
	return r.opts.AccessDenied
}
