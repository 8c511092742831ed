package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testFlags struct {
	strings   map[string]string
	durations map[string]time.Duration
}

func (x testFlags) IsSet(name string) bool {
	_, ok := x.strings[name]
	if !ok {
		_, ok = x.durations[name]
	}
	return ok
}

func (x testFlags) String(name string) string { return x.strings[name] }

func (x testFlags) Duration(name string) time.Duration { return x.durations[name] }

func writeConfig(t *testing.T, data string) string {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(data), 0600))
	return p
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, `
rpc: http://localhost:30333
wallet: /wallets/owner.json
contract: NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP
timeout: 1m
`)

	cfg, err := loadConfig(p)
	require.NoError(t, err)
	require.Equal(t, config{
		RPC:      "http://localhost:30333",
		Wallet:   "/wallets/owner.json",
		Contract: "NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP",
		Timeout:  time.Minute,
		LogLevel: defaultLogLevel,
	}, cfg)
	require.NoError(t, cfg.validate())

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "timeout: [1, 2]"))
		require.Error(t, err)
	})
}

func TestConfigApplyFlags(t *testing.T) {
	cfg := defaultConfig()
	cfg.RPC = "http://file:30333"
	cfg.Wallet = "file.json"

	cfg.applyFlags(testFlags{
		strings: map[string]string{
			rpcFlag:      "http://flag:30333",
			logLevelFlag: "debug",
		},
		durations: map[string]time.Duration{timeoutFlag: 3 * time.Second},
	})

	require.Equal(t, config{
		RPC:      "http://flag:30333",
		Wallet:   "file.json",
		Timeout:  3 * time.Second,
		LogLevel: "debug",
	}, cfg)
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.validate())

	cfg.LogLevel = "loud"
	require.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Timeout = 0
	require.Error(t, cfg.validate())
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zap.InfoLevel))

	_, err = newLogger("loud")
	require.Error(t, err)
}
