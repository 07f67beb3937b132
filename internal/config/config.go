// Package config holds all game tuning values in one place.
// Values load from an optional YAML file with environment overrides;
// every knob has a default matching the shipped balance.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Travel bounds how far the player may reach per purchase.
type Travel struct {
	YearsMin    int `yaml:"years_min"`
	YearsMax    int `yaml:"years_max"`
	DistanceMin int `yaml:"distance_min"`
	DistanceMax int `yaml:"distance_max"`

	// Failure roll: a charged, item-less outcome. Off by default —
	// the validation and messaging for the path stay live.
	FailureEnabled bool    `yaml:"failure_enabled"`
	FailureRate    float64 `yaml:"failure_rate"`
}

// Turns configures the major/minor turn cycle and its price curve.
type Turns struct {
	MinorPerMajor       int     `yaml:"minor_per_major"`
	TargetMultiplierMin float64 `yaml:"target_multiplier_min"`
	TargetMultiplierMax float64 `yaml:"target_multiplier_max"`
	CurveTrials         int     `yaml:"curve_trials"`
	PerturbMin          float64 `yaml:"perturb_min"`
	PerturbMax          float64 `yaml:"perturb_max"`
	StepClampMin        float64 `yaml:"step_clamp_min"`
	StepClampMax        float64 `yaml:"step_clamp_max"`
}

// Items configures generation of purchased goods.
type Items struct {
	CountMin      int     `yaml:"count_min"`
	CountMax      int     `yaml:"count_max"`
	ValueFloor    float64 `yaml:"value_floor"`
	VarianceMin   float64 `yaml:"variance_min"`
	VarianceMax   float64 `yaml:"variance_max"`
	SellRate      float64 `yaml:"sell_rate"`
	FixedCostRate float64 `yaml:"fixed_cost_rate"`
}

// Auction configures listing limits and the bidding simulation.
type Auction struct {
	FeeRate        float64 `yaml:"fee_rate"`
	DurationRounds int     `yaml:"duration_rounds"`
	BidThreshold   float64 `yaml:"bid_threshold"`
	MaxListings    int     `yaml:"max_listings"`
	BuyerCount     int     `yaml:"buyer_count"`
	RaiseMin       float64 `yaml:"raise_min"`
	RaiseMax       float64 `yaml:"raise_max"`
}

// Config is the full game configuration.
type Config struct {
	StartingCash   float64 `yaml:"starting_cash"`
	EnableGameOver bool    `yaml:"enable_game_over"`
	Travel         Travel  `yaml:"travel"`
	Turns          Turns   `yaml:"turns"`
	Items          Items   `yaml:"items"`
	Auction        Auction `yaml:"auction"`

	// Server settings (outer glue, not game balance).
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`
}

// Default returns the shipped balance.
func Default() Config {
	return Config{
		StartingCash:   1000,
		EnableGameOver: true,
		Travel: Travel{
			YearsMin:       1,
			YearsMax:       1_000_000,
			DistanceMin:    0,
			DistanceMax:    1_000_000,
			FailureEnabled: false,
			FailureRate:    0.10,
		},
		Turns: Turns{
			MinorPerMajor:       8,
			TargetMultiplierMin: 1.0,
			TargetMultiplierMax: 10.0,
			CurveTrials:         10,
			PerturbMin:          0.6,
			PerturbMax:          1.4,
			StepClampMin:        0.5,
			StepClampMax:        2.0,
		},
		Items: Items{
			CountMin:      2,
			CountMax:      5,
			ValueFloor:    1.0,
			VarianceMin:   0.9,
			VarianceMax:   1.1,
			SellRate:      1.0,
			FixedCostRate: 0.05,
		},
		Auction: Auction{
			FeeRate:        0.10,
			DurationRounds: 10,
			BidThreshold:   0.3,
			MaxListings:    8,
			BuyerCount:     10,
			RaiseMin:       0.05,
			RaiseMax:       0.15,
		},
		Port:   8080,
		DBPath: "data/chronotrade.db",
	}
}

// Load reads YAML from path over the defaults. A missing file is not an
// error — defaults apply. Environment overrides run last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides server-level settings from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHRONO_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("CHRONO_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CHRONO_STARTING_CASH"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.StartingCash = c
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.StartingCash <= 0 {
		return fmt.Errorf("starting_cash must be positive, got %v", c.StartingCash)
	}
	if c.Travel.YearsMin <= 0 || c.Travel.YearsMax <= c.Travel.YearsMin {
		return fmt.Errorf("invalid years bounds [%d, %d]", c.Travel.YearsMin, c.Travel.YearsMax)
	}
	if c.Travel.DistanceMin < 0 || c.Travel.DistanceMax <= c.Travel.DistanceMin {
		return fmt.Errorf("invalid distance bounds [%d, %d]", c.Travel.DistanceMin, c.Travel.DistanceMax)
	}
	if c.Turns.MinorPerMajor < 1 {
		return fmt.Errorf("minor_per_major must be at least 1, got %d", c.Turns.MinorPerMajor)
	}
	if c.Turns.TargetMultiplierMin <= 0 || c.Turns.TargetMultiplierMax < c.Turns.TargetMultiplierMin {
		return fmt.Errorf("invalid target multiplier range [%v, %v]",
			c.Turns.TargetMultiplierMin, c.Turns.TargetMultiplierMax)
	}
	if c.Turns.CurveTrials < 1 {
		return fmt.Errorf("curve_trials must be at least 1, got %d", c.Turns.CurveTrials)
	}
	if c.Items.CountMin < 1 || c.Items.CountMax < c.Items.CountMin {
		return fmt.Errorf("invalid item count range [%d, %d]", c.Items.CountMin, c.Items.CountMax)
	}
	if c.Items.FixedCostRate < 0 || c.Items.FixedCostRate > 1 {
		return fmt.Errorf("fixed_cost_rate must be in [0, 1], got %v", c.Items.FixedCostRate)
	}
	if c.Auction.FeeRate < 0 || c.Auction.FeeRate > 1 {
		return fmt.Errorf("fee_rate must be in [0, 1], got %v", c.Auction.FeeRate)
	}
	if c.Auction.MaxListings < 1 {
		return fmt.Errorf("max_listings must be at least 1, got %d", c.Auction.MaxListings)
	}
	if c.Auction.DurationRounds < 1 {
		return fmt.Errorf("duration_rounds must be at least 1, got %d", c.Auction.DurationRounds)
	}
	return nil
}
