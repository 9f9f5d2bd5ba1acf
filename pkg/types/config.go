package types

import "time"

// StoreConfig holds settings for the SQLite order store.
type StoreConfig struct {
	// DataDir is the directory holding laundry.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
}

// ForestConfig holds Random Forest hyperparameters.
type ForestConfig struct {
	// Trees is the number of trees in the ensemble.
	Trees int `json:"trees" yaml:"trees" mapstructure:"trees" validate:"gte=1,lte=2000"`

	// MinSamplesSplit is the minimum node size eligible for a split.
	MinSamplesSplit int `json:"min_samples_split" yaml:"min_samples_split" mapstructure:"min_samples_split" validate:"gte=2"`

	// MinSamplesLeaf is the minimum number of rows in each child of a split.
	MinSamplesLeaf int `json:"min_samples_leaf" yaml:"min_samples_leaf" mapstructure:"min_samples_leaf" validate:"gte=1"`

	// Seed makes fitting deterministic.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// ForecastConfig holds settings for the demand forecasts.
type ForecastConfig struct {
	// Laundry configures the per-laundry peak forecast (default 100 trees).
	Laundry ForestConfig `json:"laundry" yaml:"laundry" mapstructure:"laundry"`

	// Customer configures the per-customer forecast (default 200 trees,
	// min_samples_split 5, min_samples_leaf 2).
	Customer ForestConfig `json:"customer" yaml:"customer" mapstructure:"customer"`

	// PeakDays is the laundry forecast horizon (default 30).
	PeakDays int `json:"peak_days" yaml:"peak_days" mapstructure:"peak_days" validate:"gte=1,lte=365"`

	// LowDemandDays is the low-demand forecast horizon (default 7).
	LowDemandDays int `json:"low_demand_days" yaml:"low_demand_days" mapstructure:"low_demand_days" validate:"gte=1,lte=365"`

	// CustomerDays is the customer forecast horizon (default 90).
	CustomerDays int `json:"customer_days" yaml:"customer_days" mapstructure:"customer_days" validate:"gte=1,lte=365"`
}

// AnomalyConfig holds Isolation Forest settings for resource analysis.
type AnomalyConfig struct {
	// Contamination is the expected share of anomalous days (default 0.05).
	Contamination float64 `json:"contamination" yaml:"contamination" mapstructure:"contamination" validate:"gt=0,lte=0.5"`

	// Trees is the number of isolation trees (default 100).
	Trees int `json:"trees" yaml:"trees" mapstructure:"trees" validate:"gte=1,lte=2000"`

	// LowOrderLimit flags anomalies on days with fewer orders (default 5).
	LowOrderLimit int `json:"low_order_limit" yaml:"low_order_limit" mapstructure:"low_order_limit" validate:"gte=0"`

	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// NotifyConfig holds peak-alert notification settings.
type NotifyConfig struct {
	// WebhookURL receives alert notices as JSON. Empty disables delivery.
	WebhookURL string `json:"webhook_url" yaml:"webhook_url" mapstructure:"webhook_url" validate:"omitempty,url"`

	// Token is sent as a bearer token. Usually loaded from .secrets/webhook-token.
	Token string `json:"-" yaml:"-" mapstructure:"token"`

	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// ServerConfig holds dashboard settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// AllowedOrigins configures CORS (default http://localhost:*).
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// RequestTimeout bounds each request (default 60s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// Config groups all settings for the CLI and dashboard.
type Config struct {
	Store      StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Forecast   ForecastConfig `json:"forecast" yaml:"forecast" mapstructure:"forecast"`
	Anomaly    AnomalyConfig  `json:"anomaly" yaml:"anomaly" mapstructure:"anomaly"`
	Notify     NotifyConfig   `json:"notify" yaml:"notify" mapstructure:"notify"`
	Server     ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	ReportsDir string         `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir" validate:"required"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{DataDir: "data"},
		Forecast: ForecastConfig{
			Laundry:       ForestConfig{Trees: 100, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 42},
			Customer:      ForestConfig{Trees: 200, MinSamplesSplit: 5, MinSamplesLeaf: 2, Seed: 42},
			PeakDays:      30,
			LowDemandDays: 7,
			CustomerDays:  90,
		},
		Anomaly: AnomalyConfig{
			Contamination: 0.05,
			Trees:         100,
			LowOrderLimit: 5,
			Seed:          42,
		},
		Notify: NotifyConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 5,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:*"},
			RequestTimeout: 60 * time.Second,
		},
		ReportsDir: "reports",
	}
}
