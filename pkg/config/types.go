package config

// Config represents the fixture generation configuration
type Config struct {
	LogLevel      string   `yaml:"log_level" toml:"log_level"`
	Output        string   `yaml:"output" toml:"output"`
	Seeds         []int    `yaml:"seeds" toml:"seeds"`
	Trials        Trials   `yaml:"trials" toml:"trials"`
	Parallelism   int      `yaml:"parallelism" toml:"parallelism"`
	Scenarios     []string `yaml:"scenarios,omitempty" toml:"scenarios"`
	Journal       string   `yaml:"journal,omitempty" toml:"journal"`
	MetricsOutput string   `yaml:"metrics_output,omitempty" toml:"metrics_output"`
}

// Trials holds the trial budgets used by the scenario catalogue
type Trials struct {
	Default  int `yaml:"default" toml:"default"`
	Extended int `yaml:"extended" toml:"extended"`
	Enqueued int `yaml:"enqueued" toml:"enqueued"`
}

const (
	DefaultOutput       = "fixtures/golden-tpe/tpe_golden.json"
	DefaultTrialBudget  = 200
	ExtendedTrialBudget = 120
	EnqueuedTrialBudget = 8
	DefaultParallelism  = 1
	DefaultLogLevel     = "info"
	defaultSeedCount    = 5
)

// DefaultConfig returns the configuration that reproduces the reference fixture
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero-valued fields
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if len(cfg.Seeds) == 0 {
		cfg.Seeds = make([]int, defaultSeedCount)
		for i := range cfg.Seeds {
			cfg.Seeds[i] = i
		}
	}
	if cfg.Trials.Default == 0 {
		cfg.Trials.Default = DefaultTrialBudget
	}
	if cfg.Trials.Extended == 0 {
		cfg.Trials.Extended = ExtendedTrialBudget
	}
	if cfg.Trials.Enqueued == 0 {
		cfg.Trials.Enqueued = EnqueuedTrialBudget
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultParallelism
	}
}

// Wants reports whether the named scenario passes the scenario filter
func (c *Config) Wants(name string) bool {
	if len(c.Scenarios) == 0 {
		return true
	}
	for _, s := range c.Scenarios {
		if s == name {
			return true
		}
	}
	return false
}
