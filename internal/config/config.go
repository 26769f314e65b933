// Package config loads gateway settings from a YAML file, environment
// variables, and defaults, in that order of increasing precedence for the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/danielpatrickdp/rag-gateway/internal/router"
)

// #region config-struct

// Config holds every tunable the gateway reads at startup.
type Config struct {
	ListenAddr string

	RAGBaseURL string
	RAGTimeout time.Duration

	CloudAPIKey      string
	CloudBaseURL     string
	CloudModel       string
	CloudMaxTokens   int
	CloudTemperature float32

	JournalPath string
	CallTimeout time.Duration

	Flags router.FeatureFlags
}

// #endregion

// #region load

// Load reads configuration. cfgFile may be empty; then gateway.yaml is looked
// up in the working directory. Environment variables use the GATEWAY_ prefix
// with underscores (e.g. GATEWAY_RAG_BASE_URL). OPENAI_API_KEY is honored as
// a fallback for the cloud key.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("gateway")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("rag.base_url", "http://127.0.0.1:8001")
	v.SetDefault("rag.timeout", "30s")
	v.SetDefault("cloud.model", "")
	v.SetDefault("cloud.max_tokens", 512)
	v.SetDefault("cloud.temperature", 0.2)
	v.SetDefault("journal_path", "gateway.db")
	v.SetDefault("call_timeout", "30s")
	v.SetDefault("flags.rag_required", false)
	v.SetDefault("flags.use_rag_first", true)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if cfgFile != "" || !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ListenAddr:       v.GetString("listen_addr"),
		RAGBaseURL:       v.GetString("rag.base_url"),
		RAGTimeout:       v.GetDuration("rag.timeout"),
		CloudAPIKey:      v.GetString("cloud.api_key"),
		CloudBaseURL:     v.GetString("cloud.base_url"),
		CloudModel:       v.GetString("cloud.model"),
		CloudMaxTokens:   v.GetInt("cloud.max_tokens"),
		CloudTemperature: float32(v.GetFloat64("cloud.temperature")),
		JournalPath:      v.GetString("journal_path"),
		CallTimeout:      v.GetDuration("call_timeout"),
		Flags: router.FeatureFlags{
			RAGRequired: v.GetBool("flags.rag_required"),
			UseRAGFirst: v.GetBool("flags.use_rag_first"),
		},
	}

	if cfg.CloudAPIKey == "" {
		cfg.CloudAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// #endregion
