package model

// ================ Config ================
type ConversationConfig struct {
	TTL          string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxSeedTurns int    `envconfig:"CONVERSATION_MAX_SEED_TURNS" default:"10"`
}

type OracleModelConfig struct {
	Model       string  `envconfig:"ORACLE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ORACLE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ORACLE_TEMPERATURE" default:"0.2"`
}

type LoopConfig struct {
	MaxSteps     int    `envconfig:"LOOP_MAX_STEPS" default:"8"`
	QueryTimeout string `envconfig:"LOOP_QUERY_TIMEOUT" default:"90s"`
	RetryBackoff string `envconfig:"LOOP_ORACLE_RETRY_BACKOFF" default:"2s"`
}

type ToolsConfig struct {
	CallTimeout       string `envconfig:"TOOL_CALL_TIMEOUT" default:"30s"`
	SimilaritySearchK int    `envconfig:"TOOL_SIMILARITY_SEARCH_K" default:"4"`
	SQLMaxRows        int    `envconfig:"TOOL_SQL_MAX_ROWS" default:"100"`
	SQLEnabled        bool   `envconfig:"TOOL_SQL_ENABLED" default:"true"`
}
