package config

import (
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/litmap/litmap/pkg/service/arxiv"
	"github.com/litmap/litmap/pkg/service/scholar"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Providers holds configuration for the external paper providers. Base URLs
// and rate limits can be tuned through an optional TOML file; the Semantic
// Scholar API key comes from a flag because it is a secret.
type Providers struct {
	tuningPath    string
	scholarAPIKey string
	tuning        ProviderTuning
}

// ProviderTuning is the TOML schema of the provider tuning file
type ProviderTuning struct {
	Arxiv   ArxivTuning   `toml:"arxiv"`
	Scholar ScholarTuning `toml:"scholar"`
}

// ArxivTuning tunes the arXiv export API client
type ArxivTuning struct {
	BaseURL            string  `toml:"base_url"`
	RequestIntervalSec float64 `toml:"request_interval_sec"`
}

// ScholarTuning tunes the Semantic Scholar API client
type ScholarTuning struct {
	BaseURL          string  `toml:"base_url"`
	RequestsPerSec   float64 `toml:"requests_per_sec"`
	CandidateTimeout float64 `toml:"candidate_timeout_sec"`
}

// Flags returns CLI flags for provider configuration
func (p *Providers) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tuning",
			Usage:       "Path to a TOML file tuning provider base URLs and rate limits",
			Sources:     cli.EnvVars("LITMAP_TUNING"),
			Destination: &p.tuningPath,
		},
		&cli.StringFlag{
			Name:        "scholar-api-key",
			Usage:       "Semantic Scholar API key for higher rate limits",
			Sources:     cli.EnvVars("LITMAP_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY"),
			Destination: &p.scholarAPIKey,
		},
	}
}

// Validate checks the tuning values for consistency
func (t *ProviderTuning) Validate() error {
	for _, raw := range []string{t.Arxiv.BaseURL, t.Scholar.BaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return goerr.Wrap(ErrInvalidConfig, "provider base URL must be absolute", goerr.V("url", raw))
		}
	}
	if t.Arxiv.RequestIntervalSec < 0 {
		return goerr.Wrap(ErrInvalidConfig, "arxiv request interval must not be negative", goerr.V("interval", t.Arxiv.RequestIntervalSec))
	}
	if t.Scholar.RequestsPerSec < 0 {
		return goerr.Wrap(ErrInvalidConfig, "scholar request rate must not be negative", goerr.V("rate", t.Scholar.RequestsPerSec))
	}
	if t.Scholar.CandidateTimeout < 0 {
		return goerr.Wrap(ErrInvalidConfig, "scholar timeout must not be negative", goerr.V("timeout", t.Scholar.CandidateTimeout))
	}
	return nil
}

// Configure loads and validates the tuning file when one is configured
func (p *Providers) Configure() error {
	if p.tuningPath == "" {
		return nil
	}

	data, err := os.ReadFile(p.tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(ErrConfigNotFound, "provider tuning file not found", goerr.V(ConfigPathKey, p.tuningPath))
		}
		return goerr.Wrap(err, "failed to read provider tuning file", goerr.V(ConfigPathKey, p.tuningPath))
	}

	if err := toml.Unmarshal(data, &p.tuning); err != nil {
		return goerr.Wrap(err, "failed to parse provider tuning file", goerr.V(ConfigPathKey, p.tuningPath))
	}

	if err := p.tuning.Validate(); err != nil {
		return goerr.Wrap(err, "invalid provider tuning file", goerr.V(ConfigPathKey, p.tuningPath))
	}

	return nil
}

// ArxivClient builds an arXiv client from the configured tuning
func (p *Providers) ArxivClient() *arxiv.Client {
	var opts []arxiv.Option
	if p.tuning.Arxiv.BaseURL != "" {
		opts = append(opts, arxiv.WithBaseURL(p.tuning.Arxiv.BaseURL))
	}
	if p.tuning.Arxiv.RequestIntervalSec > 0 {
		opts = append(opts, arxiv.WithRequestInterval(time.Duration(p.tuning.Arxiv.RequestIntervalSec*float64(time.Second))))
	}
	return arxiv.New(opts...)
}

// ScholarClient builds a Semantic Scholar client from the configured tuning
func (p *Providers) ScholarClient() *scholar.Client {
	var opts []scholar.Option
	if p.scholarAPIKey != "" {
		opts = append(opts, scholar.WithAPIKey(p.scholarAPIKey))
	}
	if p.tuning.Scholar.BaseURL != "" {
		opts = append(opts, scholar.WithBaseURL(p.tuning.Scholar.BaseURL))
	}
	if p.tuning.Scholar.RequestsPerSec > 0 {
		opts = append(opts, scholar.WithRateLimit(p.tuning.Scholar.RequestsPerSec))
	}
	if p.tuning.Scholar.CandidateTimeout > 0 {
		opts = append(opts, scholar.WithHTTPClient(&http.Client{
			Timeout: time.Duration(p.tuning.Scholar.CandidateTimeout * float64(time.Second)),
		}))
	}
	return scholar.New(opts...)
}
