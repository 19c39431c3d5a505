package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type widget struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  snowflake.ID `gorm:"not null;index"`
	Name      string       `gorm:"not null"`
	Code      string       `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *widget) SetTenantID(id snowflake.ID) { w.TenantID = id }

type recorder struct{ entities []string }

func (r *recorder) RecordAccessDenied(_ context.Context, entity string) {
	r.entities = append(r.entities, entity)
}

var errWidgetMissing = apperror.New(apperror.KindNotFound, "widget_not_found")

func setupStore(t *testing.T) (Repository[widget], *recorder) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&widget{}))

	rec := &recorder{}
	return New[widget](conn, Options{
		Entity:   "widget",
		NotFound: errWidgetMissing,
		Log:      zap.NewNop(),
		Recorder: rec,
	}), rec
}

func TestInsertStampsTenant(t *testing.T) {
	repo, _ := setupStore(t)
	ctx := context.Background()

	w := &widget{ID: 1, TenantID: 999, Name: "ring"}
	require.NoError(t, repo.Insert(ctx, 7, w))
	assert.Equal(t, snowflake.ID(7), w.TenantID)

	got, err := repo.Get(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "ring", got.Name)
}

func TestGetDistinguishesMissingFromForeign(t *testing.T) {
	repo, rec := setupStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, 7, &widget{ID: 1, Name: "ring"}))

	_, err := repo.Get(ctx, 8, 1)
	assert.True(t, errors.Is(err, apperror.ErrAccessDenied))
	assert.Equal(t, []string{"widget"}, rec.entities)

	_, err = repo.Get(ctx, 7, 2)
	assert.Same(t, errWidgetMissing, err)
}

func TestUpdateAndDeleteRespectTenant(t *testing.T) {
	repo, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, 7, &widget{ID: 1, Name: "ring"}))

	err := repo.Update(ctx, 8, 1, map[string]any{"name": "stolen"})
	assert.True(t, errors.Is(err, apperror.ErrAccessDenied))
	err = repo.Delete(ctx, 8, 1)
	assert.True(t, errors.Is(err, apperror.ErrAccessDenied))

	require.NoError(t, repo.Update(ctx, 7, 1, map[string]any{"name": "chain"}))
	got, err := repo.Get(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "chain", got.Name)

	require.NoError(t, repo.Delete(ctx, 7, 1))
	err = repo.Delete(ctx, 7, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListIsTenantScoped(t *testing.T) {
	repo, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, 7, &widget{ID: 1, Name: "b", Code: "w1"}))
	require.NoError(t, repo.Insert(ctx, 7, &widget{ID: 2, Name: "a", Code: "w2"}))
	require.NoError(t, repo.Insert(ctx, 8, &widget{ID: 3, Name: "c", Code: "w3"}))

	items, err := repo.List(ctx, 7, option.OrderBy("name asc"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Name)

	count, err := repo.Count(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTenantRequired(t *testing.T) {
	repo, _ := setupStore(t)
	_, err := repo.List(context.Background(), 0)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestInsertDuplicateIsConflict(t *testing.T) {
	repo, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, 7, &widget{ID: 1, Name: "a", Code: "x"}))
	err := repo.Insert(ctx, 7, &widget{ID: 2, Name: "b", Code: "x"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}
