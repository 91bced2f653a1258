// Package config loads the flat settings object described in spec.md §6,
// grounded on original_source/sub-bridge/backend/config.py's
// env-var-with-defaults dataclass, using spf13/viper the way
// niceyeti-tabular/tabular/reinforcement/learning.go's FromYaml does
// (New(), SetConfigType, ReadInConfig) generalized to env-first lookup
// since the original reads everything from the environment, not a file.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the simulator's flat settings object (§6's recognized option
// list).
type Config struct {
	Host string
	Port int

	TickHz                  int
	SnapshotS               float64
	RequireCaptainConsent   bool
	UseEnemyAI              bool
	EnemyStatic             bool
	MaintSpawnScale         float64
	FirstTaskDelayS         float64

	UseRedis bool
	RedisURL string
	SQLitePath string
	LogLevel   string

	UseAIOrchestrator         bool
	AIFleetEngine             string
	AIShipEngine              string
	AIFleetModel              string
	AIShipModel               string
	AIFleetCadenceS           float64
	AIShipCadenceS            float64
	AIShipAlertCadenceS       float64
	AIFleetTriggerConfThresh  float64
	AIHTTPTimeoutS            float64

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// HTTPTimeout returns AIHTTPTimeoutS as a time.Duration for the
// orchestrator's per-job context.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.AIHTTPTimeoutS * float64(time.Second))
}

var v *viper.Viper

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	vp.SetDefault("host", "0.0.0.0")
	vp.SetDefault("port", 8000)
	vp.SetDefault("tick_hz", 20)
	vp.SetDefault("snapshot_s", 2.0)
	vp.SetDefault("require_captain_consent", true)
	vp.SetDefault("use_enemy_ai", false)
	vp.SetDefault("enemy_static", true)
	vp.SetDefault("maint_spawn_scale", 1.0)
	vp.SetDefault("first_task_delay_s", 30.0)

	vp.SetDefault("use_redis", false)
	vp.SetDefault("redis_url", "")
	vp.SetDefault("sqlite_path", "./sub-bridge.db")
	vp.SetDefault("log_level", "INFO")

	vp.SetDefault("use_ai_orchestrator", false)
	vp.SetDefault("ai_fleet_engine", "stub")
	vp.SetDefault("ai_ship_engine", "stub")
	vp.SetDefault("ai_fleet_model", "stub")
	vp.SetDefault("ai_ship_model", "stub")
	vp.SetDefault("ai_fleet_cadence_s", 45.0)
	vp.SetDefault("ai_ship_cadence_s", 20.0)
	vp.SetDefault("ai_ship_alert_cadence_s", 10.0)
	vp.SetDefault("ai_fleet_trigger_conf_threshold", 0.7)
	vp.SetDefault("ai_http_timeout_s", 15.0)

	vp.SetDefault("ollama_host", "http://localhost:11434")
	vp.SetDefault("openai_api_key", "")
	vp.SetDefault("openai_base_url", "https://api.openai.com/v1")

	// An optional config.yaml overlay on top of env/defaults; a missing
	// file is not an error (mirrors the original's "load .env if present").
	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Malformed config.yaml is worth surfacing, but config load
			// must not crash the process; fall back to env/defaults.
		}
	}

	return vp
}

func build(vp *viper.Viper) Config {
	return Config{
		Host: vp.GetString("host"), Port: vp.GetInt("port"),
		TickHz: vp.GetInt("tick_hz"), SnapshotS: vp.GetFloat64("snapshot_s"),
		RequireCaptainConsent: vp.GetBool("require_captain_consent"),
		UseEnemyAI:            vp.GetBool("use_enemy_ai"),
		EnemyStatic:           vp.GetBool("enemy_static"),
		MaintSpawnScale:       vp.GetFloat64("maint_spawn_scale"),
		FirstTaskDelayS:       vp.GetFloat64("first_task_delay_s"),

		UseRedis: vp.GetBool("use_redis"), RedisURL: vp.GetString("redis_url"),
		SQLitePath: vp.GetString("sqlite_path"), LogLevel: vp.GetString("log_level"),

		UseAIOrchestrator:        vp.GetBool("use_ai_orchestrator"),
		AIFleetEngine:            vp.GetString("ai_fleet_engine"),
		AIShipEngine:             vp.GetString("ai_ship_engine"),
		AIFleetModel:             vp.GetString("ai_fleet_model"),
		AIShipModel:              vp.GetString("ai_ship_model"),
		AIFleetCadenceS:          vp.GetFloat64("ai_fleet_cadence_s"),
		AIShipCadenceS:           vp.GetFloat64("ai_ship_cadence_s"),
		AIShipAlertCadenceS:      vp.GetFloat64("ai_ship_alert_cadence_s"),
		AIFleetTriggerConfThresh: vp.GetFloat64("ai_fleet_trigger_conf_threshold"),
		AIHTTPTimeoutS:           vp.GetFloat64("ai_http_timeout_s"),

		OllamaHost: vp.GetString("ollama_host"), OpenAIAPIKey: vp.GetString("openai_api_key"),
		OpenAIBaseURL: vp.GetString("openai_base_url"),
	}
}

// Load reads the process environment (plus an optional ./config.yaml
// overlay) into a Config, grounded on original_source/config.py's module-
// level `CONFIG = Config()` singleton built once at import time.
func Load() Config {
	v = newViper()
	return build(v)
}

// Reload rebuilds Config from the current environment, grounded on
// original_source/config.py's reload_from_env().
func Reload() Config {
	if v == nil {
		return Load()
	}
	return build(newViper())
}
