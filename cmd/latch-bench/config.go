package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config the benchmark's configuration structure
type Config struct {
	RedisAddr   string
	Key         string
	Callers     int
	Rounds      int
	ValueTTL    int
	LockTTL     int
	LockMaxWait int
	ComputeMs   int
}

// LoadConfig loads the config from flags and the environment (LATCH_ prefix)
func LoadConfig(cmd *cobra.Command, envPrefix string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	return &Config{
		RedisAddr:   v.GetString("redis-addr"),
		Key:         v.GetString("key"),
		Callers:     v.GetInt("callers"),
		Rounds:      v.GetInt("rounds"),
		ValueTTL:    v.GetInt("value-ttl"),
		LockTTL:     v.GetInt("lock-ttl"),
		LockMaxWait: v.GetInt("lock-max-wait"),
		ComputeMs:   v.GetInt("compute-ms"),
	}, nil
}
