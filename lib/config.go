// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"errors"
	"fmt"
	"os"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v2"
)

// ChannelConfig is one channel to join on startup.
type ChannelConfig struct {
	Name string
	Key  string
}

// Config defines a configuration file for Jabberwocky.
type Config struct {
	Server struct {
		Address   string
		Port      int
		TLS       bool
		VerifyTLS bool `yaml:"verify-tls"`
		// MaxReadErrors distinguishes unset (nil, use the default) from an
		// explicit 0, which disables the disconnect threshold entirely.
		MaxReadErrors *int   `yaml:"max-read-errors"`
		SendQ         string `yaml:"sendq"`
	}

	Identity struct {
		Nick         string
		FallbackNick string `yaml:"fallback-nick"`
		Username     string
		Realname     string
		Password     string
	}

	Channels []ChannelConfig

	Proxy struct {
		Enabled bool
		Key     string
		Master  string
	}

	Storage struct {
		Path string
	}

	LogLevel string `yaml:"log-level"`
}

// ReadErrorThreshold returns the configured consecutive-read-failure
// threshold, or the engine default when the config leaves it unset. An
// explicit 0 disables the threshold.
func (config *Config) ReadErrorThreshold() int {
	if config.Server.MaxReadErrors == nil {
		return DefaultMaxReadErrors
	}
	return *config.Server.MaxReadErrors
}

// SendQBytes returns the parsed sendq cap, 0 if none was configured.
func (config *Config) SendQBytes() (uint64, error) {
	if config.Server.SendQ == "" {
		return 0, nil
	}
	return bytefmt.ToBytes(config.Server.SendQ)
}

// LoadConfig returns a Config instance
func LoadConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	if config.Server.Address == "" {
		return nil, errors.New("No server address is defined")
	}
	if config.Identity.Nick == "" {
		return nil, errors.New("No nick is defined")
	}
	if config.Server.Port == 0 {
		config.Server.Port = 6667
	}
	if config.Proxy.Key == "" {
		config.Proxy.Key = "$"
	}
	if config.Proxy.Enabled && config.Proxy.Master == "" {
		return nil, errors.New("Proxy is enabled but no master is defined")
	}

	for _, channel := range config.Channels {
		if _, err := IrcName(channel.Name, true); err != nil {
			return nil, fmt.Errorf("Bad channel name %q: %s", channel.Name, err.Error())
		}
	}

	if _, err := config.SendQBytes(); err != nil {
		return nil, fmt.Errorf("Bad sendq %q: %s", config.Server.SendQ, err.Error())
	}

	return config, nil
}
