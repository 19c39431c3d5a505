package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/config"
	"github.com/smallbiznis/bullionbook/internal/invoiceno/domain"
	"github.com/smallbiznis/bullionbook/internal/invoiceno/format"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	Config  *config.InvoicingConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	cfg     *config.InvoicingConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("invoiceno.service"),
		repo:    p.Repo,
		cfg:     p.Config,
		metrics: p.Metrics,
	}
}

func (s *Service) Next(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, kind domain.Kind, issuedOn time.Time) (string, error) {
	if tx == nil {
		return "", domain.ErrTransactionNeeded
	}
	cfg := s.cfg.Get()
	prefix, err := prefixFor(cfg, kind)
	if err != nil {
		return "", err
	}

	seq, err := s.repo.Increment(ctx, tx, tenantID, kind, time.Now().UTC())
	if err != nil {
		return "", err
	}

	number, err := format.InvoiceNumber(cfg.Template, format.Fields{
		Prefix:   prefix,
		TenantID: tenantID,
		IssuedOn: issuedOn,
		Seq:      seq,
	})
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "invoice_number_format", err)
	}

	s.metrics.RecordInvoiceNumber(ctx, string(kind))
	s.log.Debug("invoice number allocated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("seq", seq),
	)
	return number, nil
}

func prefixFor(cfg config.InvoicingConfig, kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindSale:
		return cfg.SalePrefix, nil
	case domain.KindPurchase:
		return cfg.PurchasePrefix, nil
	case domain.KindPayment:
		return cfg.PaymentPrefix, nil
	default:
		return "", domain.ErrInvalidKind
	}
}
