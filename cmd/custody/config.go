package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultLogLevel = "info"
)

// config groups settings shared by all commands. Values are read from the
// YAML file first and then overridden by command line flags.
type config struct {
	RPC      string        `yaml:"rpc"`
	Wallet   string        `yaml:"wallet"`
	Address  string        `yaml:"address"`
	Contract string        `yaml:"contract"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Timeout:  defaultTimeout,
		LogLevel: defaultLogLevel,
	}
}

// loadConfig reads YAML configuration file. Fields missing in the file keep
// default values.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// flagValues is a source of explicitly passed command line flags. It's
// implemented by *cli.Context.
type flagValues interface {
	IsSet(name string) bool
	String(name string) string
	Duration(name string) time.Duration
}

func (c *config) applyFlags(f flagValues) {
	for name, dst := range map[string]*string{
		rpcFlag:      &c.RPC,
		walletFlag:   &c.Wallet,
		addressFlag:  &c.Address,
		contractFlag: &c.Contract,
		logLevelFlag: &c.LogLevel,
	} {
		if f.IsSet(name) {
			*dst = f.String(name)
		}
	}

	if f.IsSet(timeoutFlag) {
		c.Timeout = f.Duration(timeoutFlag)
	}
}

func (c *config) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("non-positive timeout %s", c.Timeout)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}
