package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-search/domain"
)

type Config struct {
	Database    DatabaseConfig
	Meilisearch MeilisearchConfig
	Search      SearchConfig
	Indexer     IndexerConfig
	HTTP        HTTPConfig
}

// DatabaseConfig with SSL support
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Timeout  time.Duration
	SSL      SSLConfig
}

type SSLConfig struct {
	Mode     string
	RootCert string
	Cert     string
	Key      string
}

type MeilisearchConfig struct {
	Host         string
	APIKey       string
	Timeout      time.Duration
	RecordsIndex string
	TermsIndex   string
}

// SearchConfig drives tokenization, ranking, and filtering.
type SearchConfig struct {
	FieldWeights   domain.FieldWeights
	FilterFields   []string
	MinSimilarity  float64
	ExtraStopWords []string
}

type IndexerConfig struct {
	BatchSize     int
	MirrorRetries int
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

func Load() (*Config, error) {
	dbConfig := &DatabaseConfig{
		Host:     getEnvRequired("DB_HOST"),
		Port:     getEnvRequired("DB_PORT"),
		Name:     getEnvRequired("DB_NAME"),
		User:     getEnvRequired("CATALOG_SEARCH_DB_USER"),
		Password: getEnvRequired("CATALOG_SEARCH_DB_PASSWORD"),
		Timeout:  DBTimeout,
		SSL: SSLConfig{
			Mode:     getEnvOrDefault("DB_SSL_MODE", "prefer"),
			RootCert: getEnvOrDefault("DB_SSL_ROOT_CERT", ""),
			Cert:     getEnvOrDefault("DB_SSL_CERT", ""),
			Key:      getEnvOrDefault("DB_SSL_KEY", ""),
		},
	}

	if err := dbConfig.ValidateSSLConfig(); err != nil {
		slog.Error("Invalid SSL configuration", "error", err)
		return nil, fmt.Errorf("SSL configuration error: %w", err)
	}

	weights, err := parseFieldWeights(getEnvOrDefault("SEARCH_FIELD_WEIGHTS", ""))
	if err != nil {
		return nil, fmt.Errorf("field weights: %w", err)
	}

	cfg := &Config{
		Database: *dbConfig,
		Meilisearch: MeilisearchConfig{
			Host:         getEnvRequired("MEILISEARCH_HOST"),
			APIKey:       getEnvOrDefault("MEILISEARCH_API_KEY", ""),
			Timeout:      MeiliTimeout,
			RecordsIndex: getEnvOrDefault("MEILISEARCH_RECORDS_INDEX", "catalog_records"),
			TermsIndex:   getEnvOrDefault("MEILISEARCH_TERMS_INDEX", "catalog_terms"),
		},
		Search: SearchConfig{
			FieldWeights:   weights,
			FilterFields:   splitList(getEnvOrDefault("SEARCH_FILTER_FIELDS", "country,points")),
			MinSimilarity:  floatEnv("SUGGEST_MIN_SIMILARITY", 0.3),
			ExtraStopWords: splitList(getEnvOrDefault("SEARCH_STOP_WORDS_EXTRA", "")),
		},
		Indexer: IndexerConfig{
			BatchSize:     ReindexBatchSize,
			MirrorRetries: MirrorMaxRetries,
		},
		HTTP: HTTPConfig{
			Addr:              HTTPAddr,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	slog.Info("Configuration loaded",
		"db_host", cfg.Database.Host,
		"db_sslmode", cfg.Database.SSL.Mode,
		"meilisearch_host", cfg.Meilisearch.Host,
		"filter_fields", strings.Join(cfg.Search.FilterFields, ","),
	)

	return cfg, nil
}

func (c *DatabaseConfig) GetDatabaseConnectionString() string {
	baseConn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSL.Mode,
	)

	if c.SSL.RootCert != "" {
		baseConn += fmt.Sprintf(" sslrootcert=%s", c.SSL.RootCert)
	}
	if c.SSL.Cert != "" {
		baseConn += fmt.Sprintf(" sslcert=%s", c.SSL.Cert)
	}
	if c.SSL.Key != "" {
		baseConn += fmt.Sprintf(" sslkey=%s", c.SSL.Key)
	}

	return baseConn
}

func (c *DatabaseConfig) ValidateSSLConfig() error {
	switch c.SSL.Mode {
	case "disable":
		return fmt.Errorf("SSL disable mode is not allowed")
	case "allow", "prefer":
		return nil
	case "require":
		return nil
	case "verify-ca", "verify-full":
		if c.SSL.RootCert == "" {
			return fmt.Errorf("SSL root certificate required for mode %s", c.SSL.Mode)
		}
		return nil
	default:
		return fmt.Errorf("invalid SSL mode: %s", c.SSL.Mode)
	}
}

// parseFieldWeights reads "field:tier" pairs, e.g.
// "variety:A,winery:B,title:C,description:D". Empty input keeps the default
// wine-catalog weighting.
func parseFieldWeights(raw string) (domain.FieldWeights, error) {
	if raw == "" {
		return domain.DefaultFieldWeights(), nil
	}
	weights := domain.FieldWeights{}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		tier := domain.Tier(strings.ToUpper(parts[1]))
		switch tier {
		case domain.TierA, domain.TierB, domain.TierC, domain.TierD:
		default:
			return nil, fmt.Errorf("unknown tier %q for field %q", parts[1], parts[0])
		}
		weights[parts[0]] = tier
	}
	return weights, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func floatEnv(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return defaultVal
}

func getEnvRequired(key string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
