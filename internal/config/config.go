package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileName is looked up in the directory passed to Load.
const ConfigFileName = "steersim.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend.
// An empty Path keeps the database in memory; DumpInterval controls how often
// it is copied to OutputDir.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	OutputDir    string        `json:"outputDir" mapstructure:"outputDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds InfluxDB v2 settings
type InfluxConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
	// BackupPath receives gzipped line protocol when the server is unreachable.
	// Empty disables the fallback.
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// ServerURL returns protocol://host:port.
func (c InfluxConfig) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// WebSocketConfig holds settings for the live streaming backend
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the recording backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  DBConfig        `json:"postgres" mapstructure:"postgres"`
	Influx    InfluxConfig    `json:"influx" mapstructure:"influx"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// APIConfig holds settings for publishing finished recordings to a web server
type APIConfig struct {
	Upload    bool   `json:"upload" mapstructure:"upload"`
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
	Tag       string `json:"tag" mapstructure:"tag"`
}

// MonitorConfig holds settings for the run status monitor.
// An empty StatusFile keeps the status in the log only.
type MonitorConfig struct {
	Interval   time.Duration `json:"interval" mapstructure:"interval"`
	StatusFile string        `json:"statusFile" mapstructure:"statusFile"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level          string
	Dir            string
	GraylogEnabled bool
	GraylogAddress string
}

// SimConfig holds tick loop settings and steering tunables shared by all agents
type SimConfig struct {
	TickRate   int `json:"tickRate" mapstructure:"tickRate"`
	MaxTicks   int `json:"maxTicks" mapstructure:"maxTicks"`
	Workers    int `json:"workers" mapstructure:"workers"`
	FlushEvery int `json:"flushEvery" mapstructure:"flushEvery"`

	// Realtime paces ticks to wall-clock time instead of running flat out.
	Realtime bool `json:"realtime" mapstructure:"realtime"`

	MinTimeToCollision float64 `json:"minTimeToCollision" mapstructure:"minTimeToCollision"`
	PredictionTime     float64 `json:"predictionTime" mapstructure:"predictionTime"`
	MaxPredictionTime  float64 `json:"maxPredictionTime" mapstructure:"maxPredictionTime"`
	CosThreshold       float64 `json:"cosThreshold" mapstructure:"cosThreshold"`
}

// TickDuration is the simulated time covered by one tick.
func (c SimConfig) TickDuration() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickRate)
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./steerlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("sim.tickRate", 60)
	viper.SetDefault("sim.maxTicks", 3600)
	viper.SetDefault("sim.workers", 4)
	viper.SetDefault("sim.flushEvery", 60)
	viper.SetDefault("sim.realtime", false)

	viper.SetDefault("steering.minTimeToCollision", 2.0)
	viper.SetDefault("steering.predictionTime", 3.0)
	viper.SetDefault("steering.maxPredictionTime", 20.0)
	viper.SetDefault("steering.cosThreshold", 0.707)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.outputDir", "./recordings")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "steersim")

	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "steerlab")
	viper.SetDefault("influx.bucket", "steersim")
	viper.SetDefault("influx.backupPath", "./recordings/influx_backup.lp.gz")

	viper.SetDefault("websocket.url", "ws://localhost:5000/api/v1/stream")
	viper.SetDefault("websocket.secret", "")

	viper.SetDefault("api.upload", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.tag", "")

	viper.SetDefault("monitor.interval", "5s")
	viper.SetDefault("monitor.statusFile", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "steersim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
// Defaults stay in effect when the file is missing, but the error is still
// returned so the caller can warn about it.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// LoadDefaults applies defaults without reading any file.
func LoadDefaults() {
	setDefaults()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetStorageConfig assembles the storage settings. Postgres and Influx
// settings live under the top-level db and influx keys.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			OutputDir:    viper.GetString("storage.sqlite.outputDir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		Influx: InfluxConfig{
			Host:     viper.GetString("influx.host"),
			Port:     viper.GetString("influx.port"),
			Protocol: viper.GetString("influx.protocol"),
			Token:    viper.GetString("influx.token"),
			Org:      viper.GetString("influx.org"),
			Bucket:   viper.GetString("influx.bucket"),

			BackupPath: viper.GetString("influx.backupPath"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("websocket.url"),
			Secret: viper.GetString("websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetAPIConfig returns the recording upload settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		Upload:    viper.GetBool("api.upload"),
		ServerURL: viper.GetString("api.serverUrl"),
		APIKey:    viper.GetString("api.apiKey"),
		Tag:       viper.GetString("api.tag"),
	}
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:   viper.GetDuration("monitor.interval"),
		StatusFile: viper.GetString("monitor.statusFile"),
	}
}

// GetLoggingConfig returns the log output settings.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetSimConfig returns tick loop and steering settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		TickRate:           viper.GetInt("sim.tickRate"),
		MaxTicks:           viper.GetInt("sim.maxTicks"),
		Workers:            viper.GetInt("sim.workers"),
		FlushEvery:         viper.GetInt("sim.flushEvery"),
		Realtime:           viper.GetBool("sim.realtime"),
		MinTimeToCollision: viper.GetFloat64("steering.minTimeToCollision"),
		PredictionTime:     viper.GetFloat64("steering.predictionTime"),
		MaxPredictionTime:  viper.GetFloat64("steering.maxPredictionTime"),
		CosThreshold:       viper.GetFloat64("steering.cosThreshold"),
	}
}
