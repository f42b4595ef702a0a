package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath      = "."
	defaultMySQLPort = 3306
)

// DefaultSlowThreshold is used when database.slowThreshold is unset.
const DefaultSlowThreshold = 200 * time.Millisecond

// Supported values for Database.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Supported values for Database.SchemaSync.
const (
	// SchemaSyncUpdate creates missing tables and columns but never drops or alters existing ones.
	SchemaSyncUpdate = "update"
	// SchemaSyncValidate refuses to start when the table or a mapped column is missing.
	SchemaSyncValidate = "validate"
	// SchemaSyncNone leaves the schema alone.
	SchemaSyncNone = "none"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Database DatabaseConfig `json:"database" yaml:"database"`

	// Postgres is only read when Database.Driver is "postgres".
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Seed *SeedConfig `json:"seed" yaml:"seed"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// DatabaseConfig holds the data source and ORM session settings.
type DatabaseConfig struct {
	Driver        string        `json:"driver" yaml:"driver"`
	ShowSQL       bool          `json:"showSql" yaml:"showSql"`
	FormatSQL     bool          `json:"formatSql" yaml:"formatSql"`
	SchemaSync    string        `json:"schemaSync" yaml:"schemaSync"`
	SlowThreshold time.Duration `json:"slowThreshold" yaml:"slowThreshold"`
	Pool          PoolConfig    `json:"pool" yaml:"pool"`
	MySQL         *MySQLConfig  `json:"mysql" yaml:"mysql"`
}

// PoolConfig tunes database/sql's pool. Zero values keep the driver defaults.
type PoolConfig struct {
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
}

// MySQLConfig describes the primary MySQL connection and its read replicas.
type MySQLConfig struct {
	Host                     string            `json:"host" yaml:"host"`
	Port                     int               `json:"port" yaml:"port"`
	Database                 string            `json:"database" yaml:"database"`
	UserName                 string            `json:"userName" yaml:"userName"`
	Password                 string            `json:"password" yaml:"password"`
	CreateDatabaseIfNotExist bool              `json:"createDatabaseIfNotExist" yaml:"createDatabaseIfNotExist"`
	Params                   map[string]string `json:"params" yaml:"params"`
	Replicas                 []MySQLReplica    `json:"replicas" yaml:"replicas"`
}

// MySQLReplica is a read-only endpoint sharing the primary's database name and params.
type MySQLReplica struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	UserName string `json:"userName" yaml:"userName"`
	Password string `json:"password" yaml:"password"`
}

// SeedConfig lists users inserted on startup when the users table is empty.
type SeedConfig struct {
	Enabled bool       `json:"enabled" yaml:"enabled"`
	Users   []SeedUser `json:"users" yaml:"users"`
}

// SeedUser is a user fixture. BirthDate uses the ISO date layout (2006-01-02).
type SeedUser struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	BirthDate string `json:"birthDate" yaml:"birthDate"`
	Sex       string `json:"sex" yaml:"sex"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(currEnv, searchPaths)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// DATABASE_MYSQL_USERNAME -> database.mysql.userName
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == DriverPostgres {
		if cfg.Postgres == nil {
			return nil, errors.New("database driver is postgres but the postgres section is missing")
		}
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	db := &cfg.Database

	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	if db.Driver == "" {
		db.Driver = DriverMySQL
	}

	db.SchemaSync = strings.ToLower(strings.TrimSpace(db.SchemaSync))
	if db.SchemaSync == "" {
		db.SchemaSync = SchemaSyncUpdate
	}

	if db.SlowThreshold <= 0 {
		db.SlowThreshold = DefaultSlowThreshold
	}

	switch db.Driver {
	case DriverMySQL:
		if db.MySQL == nil {
			return errors.New("database driver is mysql but database.mysql is missing")
		}
		if db.MySQL.Port == 0 {
			db.MySQL.Port = defaultMySQLPort
		}
		for i := range db.MySQL.Replicas {
			if db.MySQL.Replicas[i].Port == 0 {
				db.MySQL.Replicas[i].Port = defaultMySQLPort
			}
		}
	case DriverPostgres, DriverMemory:
	default:
		return errors.Errorf("unsupported database driver: %s", db.Driver)
	}

	switch db.SchemaSync {
	case SchemaSyncUpdate, SchemaSyncValidate, SchemaSyncNone:
	default:
		return errors.Errorf("unsupported schema sync mode: %s", db.SchemaSync)
	}

	return nil
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}
// until the first index with no host or port.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
