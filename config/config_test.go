package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"database": map[string]any{
			"showSql":    true,
			"schemaSync": "update",
			"mysql": map[string]any{
				"userName":                 "root",
				"createDatabaseIfNotExist": true,
			},
		},
		"env": map[string]any{
			"serviceName": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "DATABASE_SHOWSQL", want: "database.showSql"},
		{envKey: "DATABASE_SCHEMASYNC", want: "database.schemaSync"},
		{envKey: "DATABASE_MYSQL_USERNAME", want: "database.mysql.userName"},
		{envKey: "DATABASE_MYSQL_CREATEDATABASEIFNOTEXIST", want: "database.mysql.createDatabaseIfNotExist"},
		{envKey: "ENV_SERVICENAME", want: "env.serviceName"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "mysql defaults",
			cfg: Config{Database: DatabaseConfig{
				MySQL: &MySQLConfig{Host: "db", Replicas: []MySQLReplica{{Host: "replica"}}},
			}},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DriverMySQL, cfg.Database.Driver)
				assert.Equal(t, SchemaSyncUpdate, cfg.Database.SchemaSync)
				assert.Equal(t, DefaultSlowThreshold, cfg.Database.SlowThreshold)
				assert.Equal(t, defaultMySQLPort, cfg.Database.MySQL.Port)
				assert.Equal(t, defaultMySQLPort, cfg.Database.MySQL.Replicas[0].Port)
			},
		},
		{
			name: "memory driver needs no connection block",
			cfg:  Config{Database: DatabaseConfig{Driver: " Memory ", SchemaSync: "NONE"}},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DriverMemory, cfg.Database.Driver)
				assert.Equal(t, SchemaSyncNone, cfg.Database.SchemaSync)
			},
		},
		{
			name:    "mysql without connection block",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverMySQL}},
			wantErr: "database.mysql is missing",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Database: DatabaseConfig{Driver: "oracle"}},
			wantErr: "unsupported database driver: oracle",
		},
		{
			name:    "unknown schema sync",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverMemory, SchemaSync: "create-drop"}},
			wantErr: "unsupported schema sync mode: create-drop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.applyDefaults()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, &cfg)
		})
	}
}

func TestLoadWithEnv_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `
env:
  serviceName: userstore
  log:
    level: info
database:
  driver: mysql
  showSql: true
  slowThreshold: 150ms
  mysql:
    host: localhost
    port: 3306
    database: cadastroUsuario
    userName: root
    createDatabaseIfNotExist: true
seed:
  enabled: true
  users:
    - firstName: Ana
      lastName: Silva
      birthDate: "1992-05-10"
      sex: FEMALE
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "userstore-test.yaml"), []byte(content), 0o600))
	t.Chdir(dir)
	t.Setenv("DATABASE_MYSQL_PASSWORD", "s3cret")
	t.Setenv("DATABASE_MYSQL_PORT", "3307")

	cfg, err := LoadWithEnv[Config]("userstore-test")
	require.NoError(t, err)

	assert.Equal(t, "userstore", cfg.Env.ServiceName)
	assert.True(t, cfg.Database.ShowSQL)
	assert.Equal(t, 150*time.Millisecond, cfg.Database.SlowThreshold)
	require.NotNil(t, cfg.Database.MySQL)
	assert.Equal(t, "s3cret", cfg.Database.MySQL.Password)
	assert.Equal(t, 3307, cfg.Database.MySQL.Port)
	assert.True(t, cfg.Database.MySQL.CreateDatabaseIfNotExist)
	require.NotNil(t, cfg.Seed)
	require.Len(t, cfg.Seed.Users, 1)
	assert.Equal(t, "Ana", cfg.Seed.Users[0].FirstName)
	assert.Equal(t, "1992-05-10", cfg.Seed.Users[0].BirthDate)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("does-not-exist")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in any search path")
}
