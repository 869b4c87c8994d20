package module

import (
	"net/http"
	"time"

	"surveysync/internal/adapters/ingest/ovation"
	"surveysync/internal/platform/config"
	"surveysync/internal/platform/validate"
	"surveysync/internal/services/surveysync/guardrails"
	"surveysync/internal/services/surveysync/service"
)

// Options configures the survey sync module
type Options struct {
	Ovation    ovation.Options
	CompanyIDs []string `validate:"dive,required"`

	PageSize int `validate:"gte=1,lte=1000"`
	MaxPages int `validate:"gte=1"`

	Interval     time.Duration `validate:"gte=1s"`
	InitialDelay time.Duration `validate:"gte=0"`

	RunTimeout   time.Duration `validate:"gte=0"`
	AuthTimeout  time.Duration `validate:"gte=0"`
	FetchTimeout time.Duration `validate:"gte=0"`
	DBTimeout    time.Duration `validate:"gte=0"`

	HistoryLimit int `validate:"gte=1,lte=100"`

	// Lease takes a postgres advisory lock per run so replicas do not overlap
	Lease bool

	// HTTPClient overrides the upstream transport
	HTTPClient *http.Client `validate:"-"`
}

// FromConfig reads OVATION_* and CORE_SYNC_* from the environment
func FromConfig(cfg config.Conf) Options {
	ov := cfg.Prefix("OVATION_")
	sy := cfg.Prefix("CORE_SYNC_")
	return Options{
		Ovation: ovation.Options{
			BaseURL:      ov.MayString("BASE_URL", "https://partner.ovationup.com/partner-services/v2"),
			ClientID:     ov.MayString("CLIENT_ID", ""),
			ClientSecret: ov.MayString("CLIENT_SECRET", ""),
			PartnerID:    ov.MayString("PARTNER_ID", ""),
			Timeout:      ov.MayDuration("HTTP_TIMEOUT", 15*time.Second),
		},
		CompanyIDs: ov.MayCSV("COMPANY_IDS", nil),
		PageSize:   ov.MayInt("PAGE_SIZE", 200),
		MaxPages:   ov.MayInt("MAX_PAGES", 10),

		AuthTimeout:  ov.MayDuration("AUTH_TIMEOUT", 15*time.Second),
		FetchTimeout: ov.MayDuration("FETCH_TIMEOUT", 30*time.Second),

		Interval:     sy.MayDuration("INTERVAL", 15*time.Minute),
		InitialDelay: sy.MayDuration("INITIAL_DELAY", 30*time.Second),
		RunTimeout:   sy.MayDuration("RUN_TIMEOUT", 5*time.Minute),
		DBTimeout:    sy.MayDuration("DB_TIMEOUT", 5*time.Second),
		HistoryLimit: sy.MayInt("HISTORY_LIMIT", 20),
		Lease:        sy.MayBool("LEASE", false),
	}
}

// Validate checks the options with the shared validator
func (o Options) Validate() error {
	return validate.Struct("survey sync options", o)
}

func (o Options) serviceConfig() service.Config {
	return service.Config{
		CompanyIDs: o.CompanyIDs,
		PageSize:   o.PageSize,
		MaxPages:   o.MaxPages,
		Timeouts: guardrails.Timeouts{
			Run:   o.RunTimeout,
			Auth:  o.AuthTimeout,
			Fetch: o.FetchTimeout,
			DB:    o.DBTimeout,
		},
		HistoryLimit: o.HistoryLimit,
	}
}
