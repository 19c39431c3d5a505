package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/company/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
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
		log:      p.Log.Named("company.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		identity: p.Identity,
	}
}

func (s *Service) Get(ctx context.Context) (domain.CompanySettings, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.CompanySettings{}, err
	}
	settings, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return domain.CompanySettings{}, err
	}
	return *settings, nil
}

// Upsert writes the tenant's settings, creating the row on first save.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertCompanyRequest) (domain.CompanySettings, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.CompanySettings{}, err
	}
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Email = trimmed(req.Email)
	req.LogoURL = trimmed(req.LogoURL)
	if err := validation.Struct(req); err != nil {
		return domain.CompanySettings{}, err
	}

	now := time.Now().UTC()
	settings := domain.CompanySettings{
		ID:          s.genID.Generate(),
		CompanyName: req.CompanyName,
		Address:     trimmed(req.Address),
		Phone:       trimmed(req.Phone),
		Email:       req.Email,
		GSTNo:       trimmed(req.GSTNo),
		LogoURL:     req.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, tenantID, &settings); err != nil {
		return domain.CompanySettings{}, err
	}

	stored, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return domain.CompanySettings{}, err
	}
	return *stored, nil
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
