package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/bullionbook/internal/identity"
	"github.com/smallbiznis/bullionbook/internal/item/domain"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/smallbiznis/bullionbook/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Identity identity.Resolver
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	identity identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("item.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		identity: p.Identity,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return domain.Item{}, err
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = req.Name
	}
	code = slug.Make(code)
	if code == "" {
		return domain.Item{}, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	item := domain.Item{
		ID:          s.genID.Generate(),
		Name:        req.Name,
		Code:        code,
		Description: trimmed(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, tenantID, &item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) ([]domain.Item, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	opts := []option.QueryOption{option.OrderBy("name asc, id asc")}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		opts = append(opts, option.Where("LOWER(name) LIKE ? OR code LIKE ?", like, like))
	}

	rows, err := s.repo.List(ctx, tenantID, opts...)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Item, error) {
	tenantID, itemID, err := s.scope(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	item, err := s.repo.Get(ctx, tenantID, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

// Update renames or re-describes an item. The code stays fixed so existing
// references keep resolving.
func (s *Service) Update(ctx context.Context, req domain.UpdateItemRequest) (domain.Item, error) {
	tenantID, itemID, err := s.scope(ctx, req.ID)
	if err != nil {
		return domain.Item{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.Struct(req); err != nil {
		return domain.Item{}, err
	}

	patch := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = trimmed(req.Description)
	}
	if err := s.repo.Update(ctx, tenantID, itemID, patch); err != nil {
		return domain.Item{}, err
	}
	item, err := s.repo.Get(ctx, tenantID, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, itemID, err := s.scope(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tenantID, itemID)
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return 0, 0, err
	}
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || itemID == 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return tenantID, itemID, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
