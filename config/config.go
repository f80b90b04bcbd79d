package config

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig admin api server configuration
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// graceful shutdown timeout in seconds
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// StorageConfig selects the record store backend
type StorageConfig struct {
	Type string `yaml:"type"` // memory, bolt, postgres
	Path string `yaml:"path"` // bbolt file, relative to workdir when not absolute
	Seed bool   `yaml:"seed"` // create the default catalog on an empty store
}

// DBConfig postgres configuration
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"` // development, production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Storage  StorageConfig `yaml:"storage"`
	Database DBConfig      `yaml:"database"`
	Logger   LogConfig     `yaml:"logger"`
}

// GetDataDir returns the directory for bbolt files
func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// GetLogDir returns the log directory
func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// BoltPath resolves the bbolt file location
func (c *AppConfig) BoltPath() string {
	if c.Storage.Path == "" {
		return path.Join(c.GetDataDir(), "stockboard.db")
	}
	if path.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return path.Join(c.System.Workdir, c.Storage.Path)
}

// InitDirs creates the working directories
func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.GetDataDir(), c.GetLogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

// Validate rejects configurations the application cannot start with
func (c *AppConfig) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageBolt, StoragePostgres:
	default:
		return errors.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "StockBoard",
		Location: "Africa/Nairobi",
		Workdir:  "/var/stockboard",
		Debug:    true,
	},
	Web: WebConfig{
		Host:            "0.0.0.0",
		Port:            1816,
		ShutdownTimeout: 10,
	},
	Storage: StorageConfig{
		Type: StorageBolt,
		Seed: true,
	},
	Database: DBConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "stockboard",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/stockboard/logs/stockboard.log",
	},
}

// LoadConfig reads cfile, falling back to the defaults when the file is missing,
// then applies STOCKBOARD_* environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}

	setEnvValue("STOCKBOARD_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("STOCKBOARD_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("STOCKBOARD_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("STOCKBOARD_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("STOCKBOARD_WEB_PORT", &cfg.Web.Port)

	setEnvValue("STOCKBOARD_STORAGE_TYPE", &cfg.Storage.Type)
	setEnvValue("STOCKBOARD_STORAGE_PATH", &cfg.Storage.Path)
	setEnvBoolValue("STOCKBOARD_STORAGE_SEED", &cfg.Storage.Seed)

	setEnvValue("STOCKBOARD_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("STOCKBOARD_DB_PORT", &cfg.Database.Port)
	setEnvValue("STOCKBOARD_DB_NAME", &cfg.Database.Name)
	setEnvValue("STOCKBOARD_DB_USER", &cfg.Database.User)
	setEnvValue("STOCKBOARD_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("STOCKBOARD_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("STOCKBOARD_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("STOCKBOARD_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("STOCKBOARD_LOGGER_FILENAME", &cfg.Logger.Filename)

	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	return &cfg, cfg.Validate()
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}
