package config

import (
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

const (
	CONFIG_PATH = "./res/config.yaml"

	// Fallback defaults applied when the corresponding YAML fields are empty.
	DefaultHost     = "0.0.0.0"
	DefaultPort     = "5000"
	DefaultMongoDSN = "mongodb://localhost:27017/task"
)

// ServiceConfig holds the configuration for the service.
type ServiceConfig struct {
	ServiceName    string   `yaml:"service_name" validate:"required"`
	LogLevel       string   `yaml:"loglevel" validate:"required"`
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	PrivateKeyPath string   `yaml:"private_key_path" validate:"required"`
	Compat         Compat   `yaml:"compat"`
	Database       Database `yaml:"database" validate:"required"`
}

// Compat toggles the strict variants of checks the service historically
// left out. All default to false, which preserves the original permissive
// semantics.
type Compat struct {
	// StrictRoleCheck makes the authorization gate require that the role
	// embedded in the token matches the kind the route demands, instead of
	// only looking the id up in the collection selected by that kind.
	StrictRoleCheck bool `yaml:"strict_role_check"`
	// StrictAdminScope restricts accept/reject to assignments addressed to
	// the authenticated admin.
	StrictAdminScope bool `yaml:"strict_admin_scope"`
	// StrictTransitions rejects accept/reject once an assignment has left
	// the Pending state.
	StrictTransitions bool `yaml:"strict_transitions"`
}

type Database struct {
	Type string `yaml:"type" validate:"required"`
	// For MongoDB
	MongoDB MongoDBConfig `yaml:"mongodb_config" validate:"omitempty"`
	// For PostgreSQL
	Postgres PostgresConfig `yaml:"postgres_config" validate:"omitempty"`
}

// MongoDBConfig holds the MongoDB backend configuration.
type MongoDBConfig struct {
	DSN              string             `yaml:"dsn"`
	Timeout          time.Duration      `yaml:"timeout"`
	Options          MongoServerOptions `yaml:"mongo_server_options"`
	ValidCollections []string           `yaml:"valid_collections" validate:"required"`
	ValidFields      []string           `yaml:"valid_fields" validate:"required"`
}

type PostgresConfig struct {
	DSN         string                `yaml:"dsn"`
	Options     PostgresServerOptions `yaml:"postgres_server_options"`
	ValidTables []string              `yaml:"valid_tables" validate:"required"`
	ValidFields []string              `yaml:"valid_fields" validate:"required"`
}

type MongoServerOptions struct {
	APIVersion           string `yaml:"api_version"`
	SetStrict            bool   `yaml:"set_strict"`
	SetDeprecationErrors bool   `yaml:"set_deprecation_errors"`
}

type PostgresServerOptions struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ReadLocalConfig reads the service configuration from a YAML file at the specified path.
// It unmarshals the YAML content into a ServiceConfig struct and applies fallback
// defaults for the host, port, and MongoDB DSN when they are left empty.
// The private key path never has a fallback; a signing key must always be provided.
func ReadLocalConfig(configPath string) (*ServiceConfig, error) {
	config := &ServiceConfig{}

	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, config)
	if err != nil {
		return nil, err
	}

	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Port == "" {
		config.Port = DefaultPort
	}
	if config.Database.MongoDB.DSN == "" {
		config.Database.MongoDB.DSN = DefaultMongoDSN
	}

	return config, nil
}

func BuildServerAPIOptions(cfg MongoServerOptions) *options.ServerAPIOptions {
	opts := options.ServerAPI(options.ServerAPIVersion(cfg.APIVersion))
	opts.SetStrict(cfg.SetStrict)
	opts.SetDeprecationErrors(cfg.SetDeprecationErrors)

	return opts
}

func ListToMap(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range list {
		result[item] = true
	}
	return result
}
