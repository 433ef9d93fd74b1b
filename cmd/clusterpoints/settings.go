package main

import (
	"strings"
	"time"

	"github.com/TrevorS/clusterpoints"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings is the decoded configuration of one run. Every field can come
// from a flag, a CLUSTERPOINTS_* environment variable or the config file,
// in that order of precedence.
type Settings struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`

	IDColumn string `mapstructure:"id-column"`
	XColumn  string `mapstructure:"x-column"`
	YColumn  string `mapstructure:"y-column"`

	Algorithm        string        `mapstructure:"algorithm"`
	Linkage          string        `mapstructure:"linkage"`
	Distance         string        `mapstructure:"distance"`
	Clusters         int           `mapstructure:"clusters"`
	Seed             int64         `mapstructure:"seed"`
	Percentile       int           `mapstructure:"percentile"`
	Attribute        string        `mapstructure:"attribute"`
	AttributePercent float64       `mapstructure:"attribute-percent"`
	Workers          int           `mapstructure:"workers"`
	PollInterval     time.Duration `mapstructure:"poll-interval"`
}

// loadSettings merges the flags of cmd with the environment and the
// optional --config file.
func loadSettings(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("CLUSTERPOINTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	return &s, nil
}

// Config converts s into a library configuration. Names are parsed into
// their closed enumerations here; range checks are left to the library.
func (s *Settings) Config() (clusterpoints.Config, error) {
	cfg := clusterpoints.DefaultConfig()

	linkage, err := clusterpoints.ParseLinkage(s.Linkage)
	if err != nil {
		return cfg, err
	}

	cfg.Algorithm = clusterpoints.Algorithm(strings.ToLower(strings.TrimSpace(s.Algorithm)))
	cfg.Linkage = linkage
	cfg.DistanceType = clusterpoints.DistanceType(strings.ToLower(strings.TrimSpace(s.Distance)))
	cfg.Clusters = s.Clusters
	cfg.Seed = s.Seed
	cfg.AggregationPercentile = s.Percentile
	cfg.AttributeField = s.Attribute
	cfg.AttributePercent = s.AttributePercent
	cfg.Workers = s.Workers
	cfg.PollInterval = s.PollInterval
	return cfg, nil
}
