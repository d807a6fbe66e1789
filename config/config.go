package config

import (
	"os"
	"path/filepath"
	"regexp"
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
	defaultPath = "."

	defaultUserIDRegex    = "^[A-Za-z0-9_-]+$"
	defaultStorageTimeout = 5 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Provisioning holds the account provisioning policy consumed by the
	// validator, the credential hasher and the provisioning services.
	Provisioning *ProvisioningConfig `json:"provisioning" yaml:"provisioning"`

	// Schema maps logical table and field names onto the deployed FTP
	// daemon schema. Every repository query goes through this mapping.
	Schema *SchemaConfig `json:"schema" yaml:"schema"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// ProvisioningConfig defines the user/group provisioning policy.
// MinUID and MaxUID use -1 as the "unbounded" sentinel.
type ProvisioningConfig struct {
	MaxUserIDLength     int           `json:"maxUserIdLength" yaml:"maxUserIdLength"`
	UserIDRegex         string        `json:"userIdRegex" yaml:"userIdRegex"`
	DefaultUID          int64         `json:"defaultUid" yaml:"defaultUid"`
	MinUID              int64         `json:"minUid" yaml:"minUid"`
	MaxUID              int64         `json:"maxUid" yaml:"maxUid"`
	MinPasswdLength     int           `json:"minPasswdLength" yaml:"minPasswdLength"`
	DefaultPasswdLength int           `json:"defaultPasswdLength" yaml:"defaultPasswdLength"`
	DefaultHomedir      string        `json:"defaultHomedir" yaml:"defaultHomedir"`
	DefaultShell        string        `json:"defaultShell" yaml:"defaultShell"`
	PasswdEncryption    string        `json:"passwdEncryption" yaml:"passwdEncryption"`
	StorageTimeout      time.Duration `json:"storageTimeout" yaml:"storageTimeout"`
}

// SchemaConfig indirects every table and column identifier used by the
// persistence layer. Defaults follow the stock ProFTPD SQL schema.
type SchemaConfig struct {
	Tables TablesConfig `json:"tables" yaml:"tables"`
	Fields FieldsConfig `json:"fields" yaml:"fields"`
}

type TablesConfig struct {
	Users  string `json:"users" yaml:"users"`
	Groups string `json:"groups" yaml:"groups"`
}

type FieldsConfig struct {
	ID         string `json:"id" yaml:"id"`
	Login      string `json:"login" yaml:"login"`
	UID        string `json:"uid" yaml:"uid"`
	PrimaryGID string `json:"primaryGid" yaml:"primaryGid"`
	Passwd     string `json:"passwd" yaml:"passwd"`
	Homedir    string `json:"homedir" yaml:"homedir"`
	Shell      string `json:"shell" yaml:"shell"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Company    string `json:"company" yaml:"company"`
	Comment    string `json:"comment" yaml:"comment"`
	Disabled   string `json:"disabled" yaml:"disabled"`
	CreateDate string `json:"createDate" yaml:"createDate"`
	GroupName  string `json:"groupName" yaml:"groupName"`
	GID        string `json:"gid" yaml:"gid"`
	Members    string `json:"members" yaml:"members"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: SCHEMA_TABLES_USERS -> schema.tables.users
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
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

	if cfg.Provisioning == nil {
		cfg.Provisioning = &ProvisioningConfig{}
	}
	cfg.Provisioning.applyDefaults()

	if cfg.Schema == nil {
		cfg.Schema = &SchemaConfig{}
	}
	cfg.Schema.ApplyDefaults()
	if err := cfg.Schema.Validate(); err != nil {
		return nil, err
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func (p *ProvisioningConfig) applyDefaults() {
	if p.MaxUserIDLength == 0 {
		p.MaxUserIDLength = 16
	}
	if p.UserIDRegex == "" {
		p.UserIDRegex = defaultUserIDRegex
	}
	if p.MinUID == 0 {
		p.MinUID = -1
	}
	if p.MaxUID == 0 {
		p.MaxUID = -1
	}
	if p.MinPasswdLength == 0 {
		p.MinPasswdLength = 8
	}
	if p.DefaultPasswdLength == 0 {
		p.DefaultPasswdLength = 12
	}
	if p.DefaultShell == "" {
		p.DefaultShell = "/bin/false"
	}
	if p.PasswdEncryption == "" {
		p.PasswdEncryption = "pbkdf2"
	}
	if p.StorageTimeout == 0 {
		p.StorageTimeout = defaultStorageTimeout
	}
}

// ApplyDefaults fills in the stock ProFTPD table and column names for any
// identifier left empty in the loaded configuration.
func (s *SchemaConfig) ApplyDefaults() {
	setIfEmpty := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	setIfEmpty(&s.Tables.Users, "ftpuser")
	setIfEmpty(&s.Tables.Groups, "ftpgroup")

	setIfEmpty(&s.Fields.ID, "id")
	setIfEmpty(&s.Fields.Login, "userid")
	setIfEmpty(&s.Fields.UID, "uid")
	setIfEmpty(&s.Fields.PrimaryGID, "gid")
	setIfEmpty(&s.Fields.Passwd, "passwd")
	setIfEmpty(&s.Fields.Homedir, "homedir")
	setIfEmpty(&s.Fields.Shell, "shell")
	setIfEmpty(&s.Fields.Name, "name")
	setIfEmpty(&s.Fields.Email, "email")
	setIfEmpty(&s.Fields.Company, "company")
	setIfEmpty(&s.Fields.Comment, "comment")
	setIfEmpty(&s.Fields.Disabled, "disabled")
	setIfEmpty(&s.Fields.CreateDate, "create_date")
	setIfEmpty(&s.Fields.GroupName, "groupname")
	setIfEmpty(&s.Fields.GID, "gid")
	setIfEmpty(&s.Fields.Members, "members")
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects mapped identifiers that are not plain SQL identifiers.
// The persistence layer interpolates these names into queries, so anything
// else would be an injection vector through the configuration file.
func (s *SchemaConfig) Validate() error {
	idents := []string{
		s.Tables.Users, s.Tables.Groups,
		s.Fields.ID, s.Fields.Login, s.Fields.UID, s.Fields.PrimaryGID,
		s.Fields.Passwd, s.Fields.Homedir, s.Fields.Shell, s.Fields.Name,
		s.Fields.Email, s.Fields.Company, s.Fields.Comment, s.Fields.Disabled,
		s.Fields.CreateDate, s.Fields.GroupName, s.Fields.GID, s.Fields.Members,
	}
	for _, ident := range idents {
		if !identPattern.MatchString(ident) {
			return errors.Errorf("invalid schema identifier: %q", ident)
		}
	}

	return nil
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

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
