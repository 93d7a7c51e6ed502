package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int               `json:"port"`
	CORSOrigins []string          `json:"cors_origins"`
	LogConfig   logger.LogConfig  `json:"log_config"`
	Chunk       ChunkConfig       `json:"chunk"`
	Retrieval   RetrievalConfig   `json:"retrieval"`
	Ingest      IngestConfig      `json:"ingest"`
	Fetch       FetchConfig       `json:"fetch"`
	Embedder    EmbedderConfig    `json:"embedder"`
	Reranker    ProviderConfig    `json:"reranker"`
	VectorStore VectorStoreConfig `json:"vector_store"`
	Database    DatabaseConfig    `json:"database"`
	Jobs        JobsConfig        `json:"jobs"`
	Webhook     WebhookConfig     `json:"webhook"`
}

// ChunkConfig leaves Overlap nil when the key is absent; 0 is a valid overlap.
type ChunkConfig struct {
	Size      int    `json:"size"`
	Overlap   *int   `json:"overlap"`
	MinSignal int    `json:"min_signal"`
	Mode      string `json:"mode"`
}

type RetrievalConfig struct {
	RecallWidth     int `json:"recall_width"`
	PreviewLength   int `json:"preview_length"`
	DefaultTopK     int `json:"default_top_k"`
	CacheSize       int `json:"cache_size"`
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}

type IngestConfig struct {
	Concurrency      int `json:"concurrency"`
	EmbedBatchSize   int `json:"embed_batch_size"`
	// RateLimitSeconds spaces /ingest calls per client; 0 disables.
	RateLimitSeconds int `json:"rate_limit_seconds"`
	RateLimitBurst   int `json:"rate_limit_burst"`
}

type FetchConfig struct {
	TimeoutSeconds int             `json:"timeout_seconds"`
	GithubToken    string          `json:"github_token"`
	GithubBaseURL  string          `json:"github_base_url"`
	Extensions     []string        `json:"extensions"`
	Ignore         []string        `json:"ignore"`
	MaxFileSize    int64           `json:"max_file_size"`
	FileStore      FileStoreConfig `json:"file_store"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type EmbedderConfig struct {
	ProviderConfig
	Fallbacks     []ProviderConfig `json:"fallbacks"`
	LRUSize       int              `json:"lru_size"`
	LRUTTLSeconds int              `json:"lru_ttl_seconds"`
	DBCache       bool             `json:"db_cache"`
}

type VectorStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.DSN != "" || d.Host != ""
}

type JobsConfig struct {
	ResyncSpec       string   `json:"resync_spec"`
	ResyncURLs       []string `json:"resync_urls"`
	CacheCleanupSpec string   `json:"cache_cleanup_spec"`
	CacheMaxAgeDays  int      `json:"cache_max_age_days"`
}

type WebhookConfig struct {
	Addr    string `json:"addr"`
	Label   string `json:"label"`
	EnvName string `json:"env_name"`
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

var (
	DefaultExtensions = []string{".md", ".py", ".js", ".ts", ".json", ".yaml", ".yml", ".txt", ".jsx", ".tsx"}
	DefaultIgnore     = []string{"package-lock.json", "yarn.lock", "node_modules", ".next", "dist", "bin"}
)

// Default is a self-contained setup: local hashing embedder, sqlite index, no reranker.
func Default() *Config {
	cfg := &Config{
		Embedder: EmbedderConfig{ProviderConfig: ProviderConfig{Provider: "hashing", Model: "hashing-256"}},
		VectorStore: VectorStoreConfig{
			Type: "sqlite",
			Data: map[string]interface{}{"path": "ghostkube.db"},
		},
	}
	_ = cfg.applyDefaults()
	return cfg
}

// Load reads a JSON or YAML file. ${VAR} references are expanded from the environment first.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	content := []byte(os.ExpandEnv(string(raw)))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		content, err = yamlToJSON(content)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func yamlToJSON(content []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (cfg *Config) applyDefaults() error {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}

	if cfg.Chunk.Size == 0 {
		cfg.Chunk.Size = 500
	}
	if cfg.Chunk.Overlap == nil {
		overlap := 50
		if cfg.Chunk.Size/10 < overlap {
			overlap = cfg.Chunk.Size / 10
		}
		cfg.Chunk.Overlap = &overlap
	}
	if cfg.Chunk.MinSignal == 0 {
		cfg.Chunk.MinSignal = 20
	}
	if cfg.Chunk.Mode == "" {
		cfg.Chunk.Mode = "auto"
	}
	if cfg.Chunk.Size < 0 || *cfg.Chunk.Overlap < 0 || *cfg.Chunk.Overlap >= cfg.Chunk.Size {
		return fmt.Errorf("chunk.overlap must be in [0, chunk.size)")
	}

	if cfg.Retrieval.RecallWidth == 0 {
		cfg.Retrieval.RecallWidth = 10
	}
	if cfg.Retrieval.PreviewLength == 0 {
		cfg.Retrieval.PreviewLength = 500
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 5
	}
	if cfg.Retrieval.CacheSize == 0 {
		cfg.Retrieval.CacheSize = 1024
	}
	if cfg.Retrieval.CacheTTLSeconds == 0 {
		cfg.Retrieval.CacheTTLSeconds = 300
	}

	if cfg.Ingest.Concurrency <= 0 {
		cfg.Ingest.Concurrency = 4
	}
	if cfg.Ingest.EmbedBatchSize <= 0 {
		cfg.Ingest.EmbedBatchSize = 32
	}

	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 10
	}
	if len(cfg.Fetch.Extensions) == 0 {
		cfg.Fetch.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Fetch.Ignore == nil {
		cfg.Fetch.Ignore = append([]string(nil), DefaultIgnore...)
	}
	if cfg.Fetch.MaxFileSize <= 0 {
		cfg.Fetch.MaxFileSize = 1 << 20
	}

	if strings.TrimSpace(cfg.Embedder.Provider) == "" {
		return fmt.Errorf("embedder.provider is required")
	}
	if cfg.Embedder.LRUTTLSeconds == 0 {
		cfg.Embedder.LRUTTLSeconds = 3600
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	switch cfg.VectorStore.Type {
	case "memory", "sqlite":
	case "pgvector":
		if !cfg.Database.Enabled() {
			return fmt.Errorf("vector_store.type pgvector requires database settings")
		}
	default:
		return fmt.Errorf("vector_store.type must be memory, sqlite or pgvector")
	}
	if cfg.Embedder.DBCache && !cfg.Database.Enabled() {
		return fmt.Errorf("embedder.db_cache requires database settings")
	}

	if cfg.Jobs.CacheMaxAgeDays <= 0 {
		cfg.Jobs.CacheMaxAgeDays = 30
	}
	if cfg.Embedder.DBCache && cfg.Jobs.CacheCleanupSpec == "" {
		cfg.Jobs.CacheCleanupSpec = "30 4 * * *"
	}
	if len(cfg.Jobs.ResyncURLs) > 0 && cfg.Jobs.ResyncSpec == "" {
		cfg.Jobs.ResyncSpec = "0 3 * * *"
	}

	if cfg.Webhook.Addr == "" {
		cfg.Webhook.Addr = ":8443"
	}
	if cfg.Webhook.Label == "" {
		cfg.Webhook.Label = "ghostkube.io/service"
	}
	if cfg.Webhook.EnvName == "" {
		cfg.Webhook.EnvName = "GHOST_NOTE_ID"
	}
	return nil
}
