package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const DefaultNumberTemplate = "INV-{YYYY}{MM}-{SEQ6}"

// InvoiceDocumentConfig is the hot-reloadable part of invoice behaviour,
// read from invoice.yml.
type InvoiceDocumentConfig struct {
	NumberTemplate string `mapstructure:"numberTemplate"`
	SequenceName   string `mapstructure:"sequenceName"`
	TermsText      string `mapstructure:"termsText"`
	StrictTotals   bool   `mapstructure:"strictTotals"`
}

func DefaultInvoiceDocumentConfig() InvoiceDocumentConfig {
	return InvoiceDocumentConfig{
		NumberTemplate: DefaultNumberTemplate,
		SequenceName:   "invoice",
		TermsText:      "Goods once sold will only be taken back or exchanged as per the store return policy. For any queries regarding this invoice, write to %s.",
		StrictTotals:   false,
	}
}

type InvoiceConfigHolder struct {
	current atomic.Value // holds InvoiceDocumentConfig
}

// NewStaticInvoiceConfigHolder returns a holder that never reloads.
func NewStaticInvoiceConfigHolder(cfg InvoiceDocumentConfig) *InvoiceConfigHolder {
	holder := &InvoiceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoiceConfigHolder(cfg Config) (*InvoiceConfigHolder, error) {
	v := viper.New()

	if path := strings.TrimSpace(cfg.Invoice.ConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("invoice")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/storefront/config")
		v.AddConfigPath("/etc/storefront")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoiceDocumentConfig()
	v.SetDefault("invoice.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoice.sequenceName", defaults.SequenceName)
	v.SetDefault("invoice.termsText", defaults.TermsText)
	v.SetDefault("invoice.strictTotals", defaults.StrictTotals)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	doc, err := decodeInvoiceDocumentConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticInvoiceConfigHolder(doc)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeInvoiceDocumentConfig(v)
		if err != nil {
			log.Printf("[invoice-config] reload ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoice-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoiceConfigHolder) Get() InvoiceDocumentConfig {
	return h.current.Load().(InvoiceDocumentConfig)
}

// decodeInvoiceDocumentConfig overlays the file on the defaults, so keys
// missing from invoice.yml keep their default values.
func decodeInvoiceDocumentConfig(v *viper.Viper) (InvoiceDocumentConfig, error) {
	doc := DefaultInvoiceDocumentConfig()
	if err := v.UnmarshalKey("invoice", &doc); err != nil {
		return InvoiceDocumentConfig{}, err
	}
	if err := validateInvoiceDocumentConfig(doc); err != nil {
		return InvoiceDocumentConfig{}, err
	}
	return doc, nil
}

func validateInvoiceDocumentConfig(cfg InvoiceDocumentConfig) error {
	if strings.TrimSpace(cfg.NumberTemplate) == "" {
		return errors.New("invoice.numberTemplate cannot be empty")
	}
	if !strings.Contains(cfg.NumberTemplate, "{SEQ") {
		return errors.New("invoice.numberTemplate must contain a {SEQ} token")
	}
	if strings.TrimSpace(cfg.SequenceName) == "" {
		return errors.New("invoice.sequenceName cannot be empty")
	}
	return nil
}
