// Package config loads the client settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drake/dmconnect/internal/logger"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/session"
)

// Dir returns the dmconnect configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "dmconnect")
}

// File returns the default settings path.
func File() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// InitFile returns the path to the user's init.lua.
func InitFile() string {
	return filepath.Join(Dir(), "init.lua")
}

// Flag is a yes/no setting. The settings file writes it as Y or N; yes, no,
// true and false are accepted too.
type Flag bool

func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseFlag(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*f = Flag(v)
	return nil
}

func (f Flag) MarshalYAML() (any, error) {
	if f {
		return "Y", nil
	}
	return "N", nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "1", "ON":
		return true, nil
	case "N", "NO", "FALSE", "0", "OFF", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q, want Y or N", s)
}

// Config is the whole settings file. It is built once at startup and not
// modified afterwards.
type Config struct {
	Global     GlobalConfig     `yaml:"global"`
	Connection ConnectionConfig `yaml:"connection"`
	Worker     WorkerConfig     `yaml:"worker"`
	UI         UIConfig         `yaml:"ui"`
	Logging    logger.Config    `yaml:"logging"`
}

type GlobalConfig struct {
	// Debug serves canned data instead of connecting anywhere.
	Debug Flag `yaml:"debug"`
	// Telnet selects line-delimited framing; N reads raw chunks.
	Telnet Flag `yaml:"telnet"`
}

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     uint16 `yaml:"port"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	Encoding string `yaml:"encoding"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	Pacing         time.Duration `yaml:"pacing"`

	KeepAliveIdle     time.Duration `yaml:"keepalive_idle"`
	KeepAliveInterval time.Duration `yaml:"keepalive_interval"`
	KeepAliveCount    int           `yaml:"keepalive_count"`
}

type WorkerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	JoinTimeout  time.Duration `yaml:"join_timeout"`
	TaskQueue    int           `yaml:"task_queue"`
	ResultLimit  int           `yaml:"result_limit"`
	BacklogLimit int           `yaml:"backlog_limit"`
}

type UIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	MaxLines        int           `yaml:"max_lines"`
	MaxLineLength   int           `yaml:"max_line_length"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	n := network.DefaultConfig()
	w := session.DefaultConfig()
	log := logger.DefaultConfig()
	log.FilePath = filepath.Join(Dir(), "dmconnect.log")

	return &Config{
		Global: GlobalConfig{
			Debug:  false,
			Telnet: true,
		},
		Connection: ConnectionConfig{
			Encoding:          n.Charset,
			ConnectTimeout:    n.ConnectTimeout,
			ReadTimeout:       n.ReadTimeout,
			WriteTimeout:      n.WriteTimeout,
			Pacing:            n.Pacing,
			KeepAliveIdle:     n.KeepAlive.Idle,
			KeepAliveInterval: n.KeepAlive.Interval,
			KeepAliveCount:    n.KeepAlive.Count,
		},
		Worker: WorkerConfig{
			PollInterval: w.PollInterval,
			JoinTimeout:  w.JoinTimeout,
			TaskQueue:    w.TaskQueue,
			ResultLimit:  w.ResultLimit,
			BacklogLimit: w.BacklogLimit,
		},
		UI: UIConfig{
			RefreshInterval: time.Second,
			MaxLines:        500,
			MaxLineLength:   1024,
		},
		Logging: log,
	}
}

// LoadConfig reads the settings file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for _, o := range []struct {
		name string
		dst  *Flag
	}{
		{"DMCONNECT_DEBUG", &c.Global.Debug},
		{"DMCONNECT_TELNET", &c.Global.Telnet},
	} {
		v, ok := os.LookupEnv(o.name)
		if !ok {
			continue
		}
		b, err := parseFlag(v)
		if err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = Flag(b)
	}
	if v := os.Getenv("DMCONNECT_PASSWORD"); v != "" {
		c.Connection.Password = v
	}
	if v := os.Getenv("DMCONNECT_PORT"); v != "" {
		p, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("DMCONNECT_PORT: %w", err)
		}
		c.Connection.Port = uint16(p)
	}
	c.Logging.ApplyEnv()
	return nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch {
	case c.Connection.ReadTimeout <= 0:
		return errors.New("connection.read_timeout must be positive")
	case c.Connection.ConnectTimeout <= 0:
		return errors.New("connection.connect_timeout must be positive")
	case c.Connection.Pacing < 0:
		return errors.New("connection.pacing must not be negative")
	case c.Worker.PollInterval <= 0:
		return errors.New("worker.poll_interval must be positive")
	case c.UI.MaxLines <= 0 || c.UI.MaxLineLength < 4:
		return errors.New("ui.max_lines and ui.max_line_length are too small")
	}
	if _, err := network.LookupCharset(c.Connection.Encoding); err != nil {
		return err
	}
	return nil
}

// Mode returns the framing selected by global.telnet.
func (c *Config) Mode() network.TransportMode {
	if c.Global.Telnet {
		return network.ModeLineDelimited
	}
	return network.ModeRaw
}

// Credentials returns the connection parameters from the file. They may be
// incomplete; the caller validates them before connecting.
func (c *Config) Credentials() network.Credentials {
	return network.Credentials{
		Host:     c.Connection.Host,
		Port:     c.Connection.Port,
		Login:    c.Connection.Login,
		Password: c.Connection.Password,
	}
}

// Network converts the connection section for network.NewClient.
func (c *Config) Network() network.Config {
	return network.Config{
		Mode:           c.Mode(),
		ConnectTimeout: c.Connection.ConnectTimeout,
		ReadTimeout:    c.Connection.ReadTimeout,
		WriteTimeout:   c.Connection.WriteTimeout,
		Pacing:         c.Connection.Pacing,
		KeepAlive: network.KeepAlive{
			Idle:     c.Connection.KeepAliveIdle,
			Interval: c.Connection.KeepAliveInterval,
			Count:    c.Connection.KeepAliveCount,
		},
		Charset: c.Connection.Encoding,
	}
}

// Session converts the worker section for session.New.
func (c *Config) Session() session.Config {
	return session.Config{
		PollInterval: c.Worker.PollInterval,
		JoinTimeout:  c.Worker.JoinTimeout,
		TaskQueue:    c.Worker.TaskQueue,
		ResultLimit:  c.Worker.ResultLimit,
		BacklogLimit: c.Worker.BacklogLimit,
	}
}
