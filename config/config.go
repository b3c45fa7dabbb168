// Package config loads the node's YAML configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/erfannorozi54/highest-voice/database/mysql"
)

// Config is the root of the node config file.
type Config struct {
	// Genesis is the unix second auction 1 opens at. Zero means
	// start at process boot.
	Genesis int64 `yaml:"genesis"`
	// BatchSize caps the bidders processed per settlement call.
	// Zero uses the engine default.
	BatchSize int `yaml:"batch_size"`
	// Treasury receives the clearing price and the protocol tip
	// share, as a hex address.
	Treasury string `yaml:"treasury"`

	// HTTPPort is the TCP listen port for the API.
	HTTPPort int `yaml:"http_port"`
	// VsockPort, when non-zero, serves the API over vsock instead
	// of TCP.
	VsockPort uint32 `yaml:"vsock_port"`

	// KeeperSeconds is the settlement poll interval.
	KeeperSeconds uint64 `yaml:"keeper_seconds"`

	// MySQL, when a host is configured, enables the archive.
	MySQL mysql.Config `yaml:"mysql"`
}

// Load reads the YAML file at path into cfg.
func Load(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return errors.Wrap(err, "parse config file")
	}
	return nil
}
