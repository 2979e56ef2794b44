package emit

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the emission settings bootstrap and migration tooling
// loads from a YAML document. The zero value matches the engine defaults.
type Config struct {
	// Exclude names emitters skipped during EmitAll.
	Exclude []string `yaml:"exclude"`

	// TxScope selects the transaction boundary: batch, statement or none.
	TxScope string `yaml:"tx_scope"`

	// ContinueOnError attempts every statement and collects all failures.
	ContinueOnError bool `yaml:"continue_on_error"`

	// OnExists selects the idempotence policy: fail or skip.
	OnExists string `yaml:"on_exists"`

	// DryRun renders without executing.
	DryRun bool `yaml:"dry_run"`

	// Applied names statements from prior, already-applied batches.
	Applied []string `yaml:"applied"`
}

// LoadConfig reads an emission config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig reads an emission config from YAML.
func ParseConfig(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("emit: parsing config: %w", err)
	}
	if _, err := c.scope(); err != nil {
		return nil, err
	}
	if _, err := c.existsPolicy(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Options converts the config into the corresponding emission options.
func (c *Config) Options() []Option {
	scope, _ := c.scope()
	policy, _ := c.existsPolicy()
	opts := []Option{
		WithTxScope(scope),
		WithOnExists(policy),
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, WithExclude(c.Exclude...))
	}
	if len(c.Applied) > 0 {
		opts = append(opts, WithApplied(c.Applied...))
	}
	if c.ContinueOnError {
		opts = append(opts, WithContinueOnError())
	}
	if c.DryRun {
		opts = append(opts, WithDryRun())
	}
	return opts
}

func (c *Config) scope() (TxScope, error) {
	switch c.TxScope {
	case "", "batch":
		return TxBatch, nil
	case "statement":
		return TxStatement, nil
	case "none":
		return TxNone, nil
	default:
		return TxBatch, fmt.Errorf("emit: unknown tx_scope %q; use batch, statement or none", c.TxScope)
	}
}

func (c *Config) existsPolicy() (ExistsPolicy, error) {
	switch c.OnExists {
	case "", "fail":
		return ExistsFail, nil
	case "skip":
		return ExistsSkip, nil
	default:
		return ExistsFail, fmt.Errorf("emit: unknown on_exists %q; use fail or skip", c.OnExists)
	}
}
