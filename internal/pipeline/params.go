package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/config"
	"github.com/emberwatch/hotspot-etl-service/internal/domain"
)

// ErrInvalidParams marks run parameters rejected before any fetch occurs.
var ErrInvalidParams = errors.New("invalid run parameters")

// Params are the fully resolved parameters of one validation run.
type Params struct {
	BoundingBox            domain.BoundingBox
	Products               []string
	DayRange               int
	Lookback               time.Duration
	Eps                    float64
	MinSamples             int
	MinClusterSize         int
	RequiredHighConfidence int
}

// ParamsFromConfig builds the default run parameters from service config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		BoundingBox:            cfg.BoundingBox,
		Products:               cfg.Products,
		DayRange:               cfg.FIRMSDayRange,
		Lookback:               cfg.Lookback,
		Eps:                    cfg.ClusterEps,
		MinSamples:             cfg.ClusterMinSamples,
		MinClusterSize:         cfg.MinClusterSize,
		RequiredHighConfidence: cfg.RequiredHighConfidence,
	}
}

// Overrides are per-invocation parameter replacements supplied by the run
// trigger request. Absent fields keep their configured defaults.
type Overrides struct {
	BoundingBox            *string  `json:"bbox,omitempty"`
	Products               []string `json:"products,omitempty"`
	MinClusterSize         *int     `json:"min_cluster_size,omitempty"`
	RequiredHighConfidence *int     `json:"required_high_confidence,omitempty"`
	Lookback               *string  `json:"lookback,omitempty"`
}

// apply validates overrides against the defaults and returns the resolved
// parameters. Any invalid value wraps ErrInvalidParams.
func (p Params) apply(o Overrides) (Params, error) {
	if o.BoundingBox != nil {
		bbox, err := domain.ParseBoundingBox(*o.BoundingBox)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		p.BoundingBox = bbox
	}
	if len(o.Products) > 0 {
		for _, product := range o.Products {
			if product == "" {
				return Params{}, fmt.Errorf("%w: empty product name", ErrInvalidParams)
			}
		}
		p.Products = o.Products
	}
	if o.MinClusterSize != nil {
		if *o.MinClusterSize <= 0 {
			return Params{}, fmt.Errorf("%w: min_cluster_size must be positive", ErrInvalidParams)
		}
		p.MinClusterSize = *o.MinClusterSize
	}
	if o.RequiredHighConfidence != nil {
		if *o.RequiredHighConfidence <= 0 {
			return Params{}, fmt.Errorf("%w: required_high_confidence must be positive", ErrInvalidParams)
		}
		p.RequiredHighConfidence = *o.RequiredHighConfidence
	}
	if o.Lookback != nil {
		d, err := time.ParseDuration(*o.Lookback)
		if err != nil || d <= 0 {
			return Params{}, fmt.Errorf("%w: lookback must be a positive duration", ErrInvalidParams)
		}
		p.Lookback = d
	}
	return p, nil
}
