package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/localspark/growthcoach/internal/api"
	"github.com/localspark/growthcoach/internal/chat"
	"github.com/localspark/growthcoach/internal/genai"
	"github.com/localspark/growthcoach/internal/lockfile"
	"github.com/localspark/growthcoach/internal/store"
	"github.com/localspark/growthcoach/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for growth coach state data
	DefaultStateDir = "/var/lib/growthcoach"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "growthcoach.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Hold the state directory for the lifetime of the process so two
	// instances never share one quota database.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	chatOpts := buildChatOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping growth coach with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "daily_limit", *flags.dailyLimit)
	if err := api.Run(storeOpts, genaiOpts, chatOpts, apiOpts); err != nil {
		slog.Error("Growth coach failed to run", "error", err)
		lock.Release()
		os.Exit(1)
	}
	slog.Info("Growth coach exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	OpenAIModel string
	APIAddr     string
	DailyLimit  int
	PromptFile  string
	Debug       bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	openaiKey  *string
	model      *string
	apiAddr    *string
	dailyLimit *int
	promptFile *string
}

// initializeLogger sets up structured logging; debug level when requested.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("GROWTHCOACH_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("GROWTHCOACH_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
		DailyLimit:  util.ParseIntEnv("CHAT_DAILY_LIMIT", chat.DefaultDailyLimit),
		PromptFile:  os.Getenv("COACH_PROMPT_FILE"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No GROWTHCOACH_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"GROWTHCOACH_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"CHAT_DAILY_LIMIT", config.DailyLimit)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for growth coach data (overrides $GROWTHCOACH_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the quota store (overrides $DATABASE_URL)"),
		openaiKey:  flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		model:      flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		dailyLimit: flag.Int("daily-limit", config.DailyLimit, "daily assistant question limit per user (overrides $CHAT_DAILY_LIMIT)"),
		promptFile: flag.String("coach-prompt-file", config.PromptFile, "file with the coaching system prompt (overrides $COACH_PROMPT_FILE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"dailyLimit", *flags.dailyLimit,
		"promptFile", *flags.promptFile)

	// Follow the state directory when the DSN was left at its derived default.
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	return genaiOpts
}

// buildChatOptions constructs chat session manager options
func buildChatOptions(flags Flags) []chat.Option {
	var chatOpts []chat.Option
	if *flags.dailyLimit > 0 {
		chatOpts = append(chatOpts, chat.WithDailyLimit(*flags.dailyLimit))
	}
	if *flags.promptFile != "" {
		content, err := os.ReadFile(*flags.promptFile)
		if err != nil {
			slog.Warn("Failed to read coach prompt file, using default prompt", "error", err, "file", *flags.promptFile)
		} else if prompt := strings.TrimSpace(string(content)); prompt != "" {
			chatOpts = append(chatOpts, chat.WithSystemPrompt(prompt))
		}
	}
	return chatOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
