// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/jaxminer/corelog"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFilename = "jaxminer.yaml"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultCoin           = "monero"
	defaultStoreBackend   = tmplstore.BackendMemory
	defaultExtraNonces    = 1
	defaultMetricsPort    = 9100
	defaultMetricsRoute   = "/metrics"
	defaultMetricsPeriod  = 10 * time.Second
	storeDirname          = "templates"
)

var (
	defaultHomeDir    = appDataDir()
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the runtime configuration of the template daemon.
type Config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to YAML configuration file" yaml:"-"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit" yaml:"-"`

	Coin        string `short:"c" long:"coin" description:"Coin dialect of the incoming templates (name or ticker)" yaml:"coin"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data" yaml:"data_dir"`
	Input       string `short:"i" long:"input" description:"File with hex templates, one per line; - reads stdin" yaml:"input"`
	ExtraNonces uint32 `long:"extranonces" description:"Number of extra-nonce jobs emitted per template" yaml:"extra_nonces"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, fatal} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems" yaml:"debug_level"`

	Store   StoreConfig    `group:"Template archive" namespace:"store" yaml:"store"`
	Metrics MetricsConfig  `group:"Metrics" namespace:"metrics" yaml:"metrics"`
	Log     corelog.Config `no-flag:"true" yaml:"log"`
}

type StoreConfig struct {
	Backend string `long:"backend" description:"Template archive backend {memory, badger, leveldb}" yaml:"backend"`
}

type MetricsConfig struct {
	Enable   bool          `long:"enable" description:"Serve prometheus metrics" yaml:"enable"`
	Port     uint16        `long:"port" description:"Metrics listen port" yaml:"port"`
	Route    string        `long:"route" description:"Metrics HTTP route" yaml:"route"`
	Interval time.Duration `long:"interval" description:"Archive metrics poll interval" yaml:"interval"`
}

// Default returns the configuration used when neither a file nor flags
// override anything.
func Default() Config {
	return Config{
		ConfigFile:  defaultConfigFile,
		Coin:        defaultCoin,
		DataDir:     defaultDataDir,
		Input:       "-",
		ExtraNonces: defaultExtraNonces,
		DebugLevel:  defaultLogLevel,
		Store: StoreConfig{
			Backend: defaultStoreBackend,
		},
		Metrics: MetricsConfig{
			Port:     defaultMetricsPort,
			Route:    defaultMetricsRoute,
			Interval: defaultMetricsPeriod,
		},
		Log: corelog.Config{}.Default(),
	}
}

// Params returns the coin parameters selected by Coin.
func (cfg *Config) Params() (*chaincfg.Params, error) {
	return chaincfg.ParamsByName(cfg.Coin)
}

// StorePath is the directory of a persistent template archive.
func (cfg *Config) StorePath() string {
	return filepath.Join(cfg.DataDir, storeDirname, cfg.Store.Backend)
}

// Validate checks the configuration. Every failure wraps ErrInvalidConfig.
func (cfg *Config) Validate() error {
	if _, err := cfg.Params(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "the specified coin [%v] is invalid -- supported coins %v",
			cfg.Coin, chaincfg.CoinNames())
	}

	if !validBackend(cfg.Store.Backend) {
		return errors.Wrapf(ErrInvalidConfig, "the specified store backend [%v] is invalid -- supported backends %v",
			cfg.Store.Backend, tmplstore.Backends())
	}

	if tmplstore.IsPersistent(cfg.Store.Backend) && cfg.DataDir == "" {
		return errors.Wrapf(ErrInvalidConfig, "the %v store backend needs a data directory", cfg.Store.Backend)
	}

	if cfg.DebugLevel != showSubsystems {
		if _, err := parseDebugLevels(cfg.DebugLevel); err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
	}

	if cfg.ExtraNonces == 0 {
		return errors.Wrap(ErrInvalidConfig, "extranonces must be at least 1")
	}

	if cfg.Metrics.Enable && cfg.Metrics.Interval <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "the metrics interval must be positive -- parsed [%v]",
			cfg.Metrics.Interval)
	}

	return nil
}

func validBackend(backend string) bool {
	for _, known := range tmplstore.Backends() {
		if backend == known {
			return true
		}
	}
	return false
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence. A missing default config file
// is not an error; a missing file named by --configfile is.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := Default()

	// Pre-parse the command line options to see if an alternative config
	// file was specified. Errors other than the help request are caught
	// by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
	}

	if preCfg.ShowVersion {
		return &preCfg, nil, nil
	}

	explicitFile := preCfg.ConfigFile != defaultConfigFile
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	if err := loadConfigFile(configFile, &cfg, explicitFile); err != nil {
		return nil, nil, err
	}
	cfg.ConfigFile = configFile

	// Parse command line options again to ensure they take precedence.
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DataDir != "" {
		cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	}
	if cfg.Log.FileLoggingEnabled && !filepath.IsAbs(cfg.Log.Directory) && cfg.DataDir != "" {
		cfg.Log.Directory = filepath.Join(cfg.DataDir, cfg.Log.Directory)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}

func loadConfigFile(path string, cfg *Config, required bool) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) && !required {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "can't open config file")
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "can't parse config file %s", path)
	}
	return nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}

func appDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "."+corelog.AppName)
}
