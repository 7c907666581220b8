package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/digineo/ipsockets/ip"
	"github.com/digineo/ipsockets/socket"
)

type config struct {
	Listen   string `koanf:"listen"`
	Network  string `koanf:"network"`
	Timeout  string `koanf:"timeout"`
	LogLevel string `koanf:"log_level"`

	opts socket.Options
}

func readConfig(fname string) (*config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}
	return parseConfig(data, parser)
}

func parseConfig(data []byte, parser koanf.Parser) (*config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	var cfg config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &cfg, nil
}

// Validate checks the settings and fills in defaults.
func (c *config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config.listen is empty")
	}
	if err := validListen(c.Listen); err != nil {
		return fmt.Errorf("config.listen is invalid: %v", err)
	}

	switch c.Network {
	case "":
		c.Network = "udp"
	case "udp", "tcp":
	default:
		return fmt.Errorf("config.network must be udp or tcp, got %q", c.Network)
	}

	c.opts = socket.DefaultOptions
	if c.Timeout != "" {
		var e error
		if c.opts.Timeout, e = time.ParseDuration(c.Timeout); e != nil {
			return fmt.Errorf("config.timeout is invalid: %v", e)
		}
		if c.opts.Timeout < 0 {
			return fmt.Errorf("config.timeout must not be negative, got %s", c.Timeout)
		}
	}
	if c.LogLevel != "" {
		var e error
		if c.opts.LogLevel, e = socket.ParseLogLevel(c.LogLevel); e != nil {
			return fmt.Errorf("config.log_level is invalid: %v", e)
		}
	}
	return nil
}

// validListen accepts "a.b.c.d:port" and "[ipv6]:port".
func validListen(s string) (err error) {
	if strings.HasPrefix(s, "[") {
		_, err = ip.ParseAddrV6(s)
	} else {
		_, err = ip.ParseAddrV4(s)
	}
	return
}
