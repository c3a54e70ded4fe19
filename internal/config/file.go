package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/naming"
)

// fileConfig is the YAML shape of a config file. Pointer fields
// distinguish "absent" from zero values so absent keys keep defaults.
type fileConfig struct {
	Scheme         *string            `yaml:"scheme"`
	Workers        *int               `yaml:"workers"`
	GroupByFoundry *bool              `yaml:"group_by_foundry"`
	Duplicates     *string            `yaml:"duplicates"`
	DuplicatesDir  *string            `yaml:"duplicates_dir"`
	Journal        *string            `yaml:"journal"`
	MetricsFile    *string            `yaml:"metrics_file"`
	LogFile        *string            `yaml:"log_file"`
	Color          *string            `yaml:"color"`
	Debug          *bool              `yaml:"debug"`
	Extensions     []string           `yaml:"extensions"`
	FoundryRules   []foundry.RuleSpec `yaml:"foundry_rules"`
}

// LoadFile reads a YAML configuration file and overlays the keys it sets
// onto cfg. Unknown keys are rejected so typos do not go unnoticed.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := fc.apply(cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Scheme != nil {
		s, err := naming.ParseScheme(*fc.Scheme)
		if err != nil {
			return err
		}
		cfg.Scheme = s
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.GroupByFoundry != nil {
		cfg.GroupByFoundry = *fc.GroupByFoundry
	}
	if fc.Duplicates != nil {
		if err := (&duplicateModeValue{&cfg.Duplicates}).Set(*fc.Duplicates); err != nil {
			return err
		}
	}
	if fc.DuplicatesDir != nil {
		cfg.DuplicatesDir = *fc.DuplicatesDir
	}
	if fc.Journal != nil {
		cfg.JournalPath = *fc.Journal
	}
	if fc.MetricsFile != nil {
		cfg.MetricsFile = *fc.MetricsFile
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Color != nil {
		if err := (&colorModeValue{&cfg.ColorMode}).Set(*fc.Color); err != nil {
			return err
		}
	}
	if fc.Debug != nil {
		cfg.Verbose = *fc.Debug
	}
	if len(fc.Extensions) > 0 {
		cfg.Extensions = fc.Extensions
	}
	if len(fc.FoundryRules) > 0 {
		cfg.FoundryRules = fc.FoundryRules
	}
	return nil
}
