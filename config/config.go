package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"endfind/estimator"
)

// Config is the complete endfind configuration.
type Config struct {
	Estimator EstimatorConfig `yaml:"estimator"`
	UDP       UDPConfig       `yaml:"udp"`
	HTTP      HTTPConfig      `yaml:"http"`
	Relay     RelayConfig     `yaml:"relay"`
}

// EstimatorConfig holds the search settings.
type EstimatorConfig struct {
	Sigma          float64 `yaml:"sigma"`
	SearchRadius   int     `yaml:"search_radius"`
	GridResolution int     `yaml:"grid_resolution"`
	UseClosest     bool    `yaml:"use_closest"`
	Workers        int     `yaml:"workers"`
	// Seed fixes closest-candidate sampling; 0 draws a fresh seed per run.
	Seed uint64 `yaml:"seed"`
	// MinObservations is how many distinct sightings a live session waits for.
	MinObservations int `yaml:"min_observations"`
}

// UDPConfig controls the datagram intake.
type UDPConfig struct {
	Port    int    `yaml:"port"`
	Capture string `yaml:"capture"`
}

// HTTPConfig controls the web view. Port 0 disables it.
type HTTPConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// RelayConfig lists downstream prediction consumers.
type RelayConfig struct {
	Header  string        `yaml:"header"`
	Targets []RelayTarget `yaml:"targets"`
}

type RelayTarget struct {
	Addr  string `yaml:"addr"`
	Proto string `yaml:"proto"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Estimator: EstimatorConfig{
			Sigma:           estimator.DefaultSigma,
			SearchRadius:    estimator.DefaultSearchRadius,
			GridResolution:  estimator.DefaultGridResolution,
			UseClosest:      true,
			MinObservations: 2,
		},
		UDP:   UDPConfig{Port: 44333},
		Relay: RelayConfig{Header: "endfind"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	e := c.Estimator
	if !(e.Sigma > 0) {
		return fmt.Errorf("estimator.sigma must be positive, got %v", e.Sigma)
	}
	if e.SearchRadius <= 0 {
		return fmt.Errorf("estimator.search_radius must be positive, got %d", e.SearchRadius)
	}
	if e.GridResolution <= 0 {
		return fmt.Errorf("estimator.grid_resolution must be positive, got %d", e.GridResolution)
	}
	if e.Workers < 0 {
		return fmt.Errorf("estimator.workers must not be negative, got %d", e.Workers)
	}
	if e.MinObservations < 1 {
		return fmt.Errorf("estimator.min_observations must be at least 1, got %d", e.MinObservations)
	}
	if c.UDP.Port < 0 || c.UDP.Port > 65535 {
		return fmt.Errorf("udp.port out of range: %d", c.UDP.Port)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	for i, t := range c.Relay.Targets {
		if t.Addr == "" {
			return fmt.Errorf("relay.targets[%d].addr is required", i)
		}
		switch strings.ToLower(t.Proto) {
		case "udp", "tcp":
		default:
			return fmt.Errorf("relay.targets[%d].proto must be udp or tcp, got %q", i, t.Proto)
		}
	}
	return nil
}

// SearchParams converts the estimator section for the search call.
func (e EstimatorConfig) SearchParams() estimator.SearchParams {
	return estimator.SearchParams{
		SearchRadius:   e.SearchRadius,
		GridResolution: e.GridResolution,
		UseClosest:     e.UseClosest,
	}
}

// Options converts the estimator section into estimator options.
func (e EstimatorConfig) Options() []estimator.Option {
	var opts []estimator.Option
	if e.Workers > 0 {
		opts = append(opts, estimator.WithWorkers(e.Workers))
	}
	if e.Seed != 0 {
		opts = append(opts, estimator.WithSeed(e.Seed))
	}
	return opts
}

// Print displays the configuration.
func (c *Config) Print() {
	e := c.Estimator
	fmt.Printf("Estimator: sigma=%g radius=%d resolution=%d closest=%v\n",
		e.Sigma, e.SearchRadius, e.GridResolution, e.UseClosest)
	fmt.Printf("UDP: port %d\n", c.UDP.Port)
	if c.UDP.Capture != "" {
		fmt.Printf("Capture: %s\n", c.UDP.Capture)
	}
	if c.HTTP.Port > 0 {
		fmt.Printf("HTTP: port %d\n", c.HTTP.Port)
	}
	for _, t := range c.Relay.Targets {
		fmt.Printf("Relay: %s %s\n", strings.ToLower(t.Proto), t.Addr)
	}
}
