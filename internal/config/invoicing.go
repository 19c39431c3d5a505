package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig is the human-readable invoice number policy.
type InvoicingConfig struct {
	SalePrefix     string `mapstructure:"salePrefix"`
	PurchasePrefix string `mapstructure:"purchasePrefix"`
	PaymentPrefix  string `mapstructure:"paymentPrefix"`
	Template       string `mapstructure:"template"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		SalePrefix:     "S",
		PurchasePrefix: "P",
		PaymentPrefix:  "PAY",
		Template:       "{PREFIX}-{TENANT}-{SEQ6}",
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfig returns a holder that never reloads.
func NewStaticInvoicingConfig(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bullionbook")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BULLIONBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.salePrefix", defaults.SalePrefix)
	v.SetDefault("invoicing.purchasePrefix", defaults.PurchasePrefix)
	v.SetDefault("invoicing.paymentPrefix", defaults.PaymentPrefix)
	v.SetDefault("invoicing.template", defaults.Template)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInvoicingConfig(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	if h == nil {
		return DefaultInvoicingConfig()
	}
	cfg, ok := h.current.Load().(InvoicingConfig)
	if !ok {
		return DefaultInvoicingConfig()
	}
	return cfg
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if strings.TrimSpace(cfg.SalePrefix) == "" ||
		strings.TrimSpace(cfg.PurchasePrefix) == "" ||
		strings.TrimSpace(cfg.PaymentPrefix) == "" {
		return errors.New("invoicing prefixes cannot be empty")
	}
	if cfg.SalePrefix == cfg.PurchasePrefix || cfg.SalePrefix == cfg.PaymentPrefix || cfg.PurchasePrefix == cfg.PaymentPrefix {
		return errors.New("invoicing prefixes must be distinct")
	}
	if !strings.Contains(cfg.Template, "{PREFIX}") || !strings.Contains(cfg.Template, "{SEQ") {
		return errors.New("invoicing.template must contain {PREFIX} and a {SEQ} token")
	}
	return nil
}
