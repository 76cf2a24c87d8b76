package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jfjlaros/arduino-simple-rpc/itf"
	"github.com/jfjlaros/arduino-simple-rpc/transport"
	"github.com/mdzio/go-logging"
)

// settings shared by all subcommands
type settings struct {
	Device      string
	BaudRate    int
	Wait        time.Duration
	ReadTimeout time.Duration
	Encoding    string
	LogLevel    logging.LogLevel
}

func defaultSettings() settings {
	return settings{
		BaudRate: transport.DefaultBaudRate,
		Wait:     itf.DefaultWait,
		LogLevel: logging.InfoLevel,
	}
}

type fileConfig struct {
	Device      string `toml:"device"`
	BaudRate    int    `toml:"baudrate"`
	Wait        string `toml:"wait"`
	ReadTimeout string `toml:"read_timeout"`
	Encoding    string `toml:"encoding"`
	Log         string `toml:"log"`
}

// loadConfig applies a TOML configuration file to s. Keys in skip (flags
// given on the command line) are not overwritten.
func loadConfig(path string, s *settings, skip map[string]bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("Loading of configuration %s failed: %w", path, err)
	}
	use := func(key string) bool {
		return meta.IsDefined(key) && !skip[key]
	}

	if use("device") {
		s.Device = strings.TrimSpace(raw.Device)
	}
	if use("baudrate") {
		if raw.BaudRate <= 0 {
			return fmt.Errorf("Invalid baud rate in %s: %d", path, raw.BaudRate)
		}
		s.BaudRate = raw.BaudRate
	}
	if use("wait") {
		d, err := parseDuration(raw.Wait)
		if err != nil {
			return fmt.Errorf("Invalid wait in %s: %w", path, err)
		}
		s.Wait = d
	}
	if use("read_timeout") {
		d, err := parseDuration(raw.ReadTimeout)
		if err != nil {
			return fmt.Errorf("Invalid read_timeout in %s: %w", path, err)
		}
		s.ReadTimeout = d
	}
	if use("encoding") {
		s.Encoding = strings.TrimSpace(raw.Encoding)
	}
	if use("log") {
		err := s.LogLevel.Set(strings.TrimSpace(raw.Log))
		if err != nil {
			return fmt.Errorf("Invalid log level in %s: %w", path, err)
		}
	}

	unknown := meta.Undecoded()
	if len(unknown) > 0 {
		log.Warningf("Ignoring unknown keys in %s: %v", path, unknown)
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}
	return d, nil
}

// seconds converts a flag value in seconds.
func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func (s *settings) newInterface() *itf.Interface {
	i := itf.New(s.Device)
	i.BaudRate = s.BaudRate
	i.Wait = s.Wait
	i.ReadTimeout = s.ReadTimeout
	return i
}
