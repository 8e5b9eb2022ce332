// Package config assembles the simulation configuration from defaults,
// environment variables and an optional YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the full simulation configuration
type Config struct {
	Sim struct {
		Steps        int     `yaml:"steps"`
		WarmupSteps  int     `yaml:"warmup_steps"`
		Seed         int64   `yaml:"seed"`
		InitialPrice float64 `yaml:"initial_price"`
		OutputDir    string  `yaml:"output_dir"`
	} `yaml:"sim"`

	Options struct {
		Strikes       []float64 `yaml:"strikes"`
		Tau           float64   `yaml:"tau"`
		Rate          float64   `yaml:"rate"`
		Dividend      float64   `yaml:"dividend"`
		Vol           float64   `yaml:"vol"`
		HedgeInterval int       `yaml:"hedge_interval"`
		HedgeTick     float64   `yaml:"hedge_tick"`
		VolLookback   int       `yaml:"vol_lookback"`
		Annualization float64   `yaml:"annualization"`
	} `yaml:"options"`

	Agents struct {
		NoiseTraders       int     `yaml:"noise_traders"`
		MarketMakers       int     `yaml:"market_makers"`
		InformedTraders    int     `yaml:"informed_traders"`
		TrendTraders       int     `yaml:"trend_traders"`
		FundamentalTraders int     `yaml:"fundamental_traders"`
		OptionMarketMakers int     `yaml:"option_market_makers"`
		OptionNoiseTraders int     `yaml:"option_noise_traders"`
		OptionArbitrageurs int     `yaml:"option_arbitrageurs"`
		NoiseLevel         float64 `yaml:"noise_level"`
		OptionSpreadFactor float64 `yaml:"option_spread_factor"`
		ArbThreshold       float64 `yaml:"arb_threshold"`
	} `yaml:"agents"`

	News struct {
		Probability float64 `yaml:"probability"`
		Volatility  float64 `yaml:"volatility"`
	} `yaml:"news"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// LoadConfig builds the configuration from defaults and environment
// variables, then overlays the YAML file at path when path is non-empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SIM_STEPS", 500)
	v.SetDefault("SIM_WARMUP_STEPS", 50)
	v.SetDefault("SIM_SEED", 42)
	v.SetDefault("SIM_INITIAL_PRICE", 100.0)
	v.SetDefault("SIM_OUTPUT_DIR", "output")

	v.SetDefault("OPTION_TAU", 0.25)
	v.SetDefault("OPTION_RATE", 0.01)
	v.SetDefault("OPTION_DIVIDEND", 0.0)
	v.SetDefault("OPTION_VOL", 0.2)
	v.SetDefault("OPTION_HEDGE_INTERVAL", 5)
	v.SetDefault("OPTION_HEDGE_TICK", 0.0001)
	v.SetDefault("OPTION_VOL_LOOKBACK", 200)
	v.SetDefault("OPTION_ANNUALIZATION", 252.0)

	v.SetDefault("NUM_NOISE_TRADERS", 10)
	v.SetDefault("NUM_MARKET_MAKERS", 2)
	v.SetDefault("NUM_INFORMED_TRADERS", 3)
	v.SetDefault("NUM_TREND_TRADERS", 2)
	v.SetDefault("NUM_FUNDAMENTAL_TRADERS", 3)
	v.SetDefault("NUM_OPTION_MARKET_MAKERS", 2)
	v.SetDefault("NUM_OPTION_NOISE_TRADERS", 5)
	v.SetDefault("NUM_OPTION_ARBITRAGEURS", 1)
	v.SetDefault("NOISE_TRADER_LEVEL", 0.05)
	v.SetDefault("OPTION_SPREAD_FACTOR", 0.05)
	v.SetDefault("OPTION_ARB_THRESHOLD", 0.5)

	v.SetDefault("NEWS_PROBABILITY", 0.1)
	v.SetDefault("NEWS_VOLATILITY", 1.0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKER_ADDR", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "marketsim-steps")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")

	v.AutomaticEnv()

	cfg := &Config{}
	cfg.Sim.Steps = v.GetInt("SIM_STEPS")
	cfg.Sim.WarmupSteps = v.GetInt("SIM_WARMUP_STEPS")
	cfg.Sim.Seed = v.GetInt64("SIM_SEED")
	cfg.Sim.InitialPrice = v.GetFloat64("SIM_INITIAL_PRICE")
	cfg.Sim.OutputDir = v.GetString("SIM_OUTPUT_DIR")

	cfg.Options.Strikes = []float64{90, 95, 100, 105, 110}
	cfg.Options.Tau = v.GetFloat64("OPTION_TAU")
	cfg.Options.Rate = v.GetFloat64("OPTION_RATE")
	cfg.Options.Dividend = v.GetFloat64("OPTION_DIVIDEND")
	cfg.Options.Vol = v.GetFloat64("OPTION_VOL")
	cfg.Options.HedgeInterval = v.GetInt("OPTION_HEDGE_INTERVAL")
	cfg.Options.HedgeTick = v.GetFloat64("OPTION_HEDGE_TICK")
	cfg.Options.VolLookback = v.GetInt("OPTION_VOL_LOOKBACK")
	cfg.Options.Annualization = v.GetFloat64("OPTION_ANNUALIZATION")

	cfg.Agents.NoiseTraders = v.GetInt("NUM_NOISE_TRADERS")
	cfg.Agents.MarketMakers = v.GetInt("NUM_MARKET_MAKERS")
	cfg.Agents.InformedTraders = v.GetInt("NUM_INFORMED_TRADERS")
	cfg.Agents.TrendTraders = v.GetInt("NUM_TREND_TRADERS")
	cfg.Agents.FundamentalTraders = v.GetInt("NUM_FUNDAMENTAL_TRADERS")
	cfg.Agents.OptionMarketMakers = v.GetInt("NUM_OPTION_MARKET_MAKERS")
	cfg.Agents.OptionNoiseTraders = v.GetInt("NUM_OPTION_NOISE_TRADERS")
	cfg.Agents.OptionArbitrageurs = v.GetInt("NUM_OPTION_ARBITRAGEURS")
	cfg.Agents.NoiseLevel = v.GetFloat64("NOISE_TRADER_LEVEL")
	cfg.Agents.OptionSpreadFactor = v.GetFloat64("OPTION_SPREAD_FACTOR")
	cfg.Agents.ArbThreshold = v.GetFloat64("OPTION_ARB_THRESHOLD")

	cfg.News.Probability = v.GetFloat64("NEWS_PROBABILITY")
	cfg.News.Volatility = v.GetFloat64("NEWS_VOLATILITY")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Pretty = v.GetBool("LOG_PRETTY")

	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.BrokerAddr = v.GetString("KAFKA_BROKER_ADDR")
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")

	cfg.Otel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.Otel.Endpoint = v.GetString("OTEL_ENDPOINT")

	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Sim.Steps <= 0 {
		return fmt.Errorf("SIM_STEPS must be positive")
	}
	if cfg.Sim.WarmupSteps < 0 {
		return fmt.Errorf("SIM_WARMUP_STEPS must not be negative")
	}
	if cfg.Sim.InitialPrice <= 0 {
		return fmt.Errorf("SIM_INITIAL_PRICE must be positive")
	}
	if len(cfg.Options.Strikes) == 0 {
		return fmt.Errorf("options strikes must not be empty")
	}
	for _, k := range cfg.Options.Strikes {
		if k <= 0 {
			return fmt.Errorf("strike %v must be positive", k)
		}
	}
	if cfg.Options.Tau <= 0 {
		return fmt.Errorf("OPTION_TAU must be positive")
	}
	if cfg.Options.Vol <= 0 {
		return fmt.Errorf("OPTION_VOL must be positive")
	}
	if cfg.Options.HedgeInterval <= 0 {
		return fmt.Errorf("OPTION_HEDGE_INTERVAL must be positive")
	}
	if cfg.Options.HedgeTick <= 0 {
		return fmt.Errorf("OPTION_HEDGE_TICK must be positive")
	}
	if cfg.Options.VolLookback < 3 {
		return fmt.Errorf("OPTION_VOL_LOOKBACK must be at least 3")
	}
	if cfg.News.Probability < 0 || cfg.News.Probability > 1 {
		return fmt.Errorf("NEWS_PROBABILITY must be in [0, 1]")
	}
	return nil
}
