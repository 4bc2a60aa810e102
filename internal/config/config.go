// Package config assembles runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/llm"
	"github.com/abhisek/examforge/internal/pdfrender"
	"github.com/abhisek/examforge/internal/pdftext"
	"github.com/abhisek/examforge/internal/qcm"
	"github.com/abhisek/examforge/internal/store"
)

const prefix = "EXAMFORGE_"

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

type Config struct {
	Mode     Mode
	LogLevel string
	// LogHashSalt is mixed into hashed emails in logs.
	LogHashSalt string

	HTTPAddr       string
	CORSOrigins    []string
	MaxUploadBytes int64
	RequestTimeout time.Duration

	DBPath  string
	BlobDir string

	// RequireCredits gates full exam runs on the ledger.
	RequireCredits bool

	LLM     llm.Config
	QCM     qcm.Config
	PDFText pdftext.Config
	Print   pdfrender.Config
	Credits credits.Config
	Packs   []credits.Pack
}

// Load reads envFile (if present) into the process environment without
// overriding variables already set, then builds the Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from EXAMFORGE_* variables.
func FromEnv() (Config, error) {
	mode := Mode(envOr("ENV", string(ModeDev)))
	if mode != ModeDev && mode != ModeProd {
		return Config{}, fmt.Errorf("%sENV must be dev or prod, got %q", prefix, mode)
	}

	dbPath := envOr("DB", "")
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		dbPath = p
	}

	llmCfg := llm.ConfigFromEnv()
	if discovered, ok := llm.DiscoverConfig(); ok && os.Getenv(prefix+"LLM_PROVIDER") == "" {
		llmCfg = discovered
	}

	qcmCfg := qcm.DefaultConfig()
	qcmCfg.Target = envInt("QCM_TARGET", qcmCfg.Target)
	qcmCfg.PromptQuestions = envInt("QCM_PROMPT_QUESTIONS", qcmCfg.PromptQuestions)
	qcmCfg.MaxTokens = envInt("QCM_MAX_TOKENS", qcmCfg.MaxTokens)
	qcmCfg.Temperature = envFloat("QCM_TEMPERATURE", qcmCfg.Temperature)
	qcmCfg.UseSchema = envBool("QCM_USE_SCHEMA", qcmCfg.UseSchema)
	if qcmCfg.PromptQuestions < qcmCfg.Target {
		return Config{}, fmt.Errorf("%sQCM_PROMPT_QUESTIONS (%d) must be at least QCM_TARGET (%d)", prefix, qcmCfg.PromptQuestions, qcmCfg.Target)
	}

	packs, err := loadPacks(envOr("PACKS_FILE", ""))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mode:           mode,
		LogLevel:       envOr("LOG_LEVEL", ""),
		LogHashSalt:    envOr("LOG_HASH_SALT", ""),
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 20)) << 20,
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 5*time.Minute),
		DBPath:         dbPath,
		BlobDir:        envOr("BLOB_DIR", "./data/exams"),
		RequireCredits: envBool("REQUIRE_CREDITS", true),
		LLM:            llmCfg,
		QCM:            qcmCfg,
		PDFText: pdftext.Config{
			Backend:   envOr("PDFTEXT_BACKEND", "auto"),
			Timeout:   envDuration("PDFTEXT_TIMEOUT", 60*time.Second),
			PdfToText: envOr("PDFTOTEXT_PATH", ""),
			PdfInfo:   envOr("PDFINFO_PATH", ""),
			RemoteURL: envOr("PDFTEXT_URL", os.Getenv("PDF_SERVICE_URL")),
			DocumentAI: pdftext.DocumentAIConfig{
				ProjectID:        envOr("DOCUMENTAI_PROJECT", ""),
				Location:         envOr("DOCUMENTAI_LOCATION", "us"),
				ProcessorID:      envOr("DOCUMENTAI_PROCESSOR", ""),
				ProcessorVersion: envOr("DOCUMENTAI_PROCESSOR_VERSION", ""),
				CredentialsFile:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			},
		},
		Print: pdfrender.Config{
			Backend:   envOr("PRINT_BACKEND", "disabled"),
			Chromium:  envOr("CHROMIUM_PATH", ""),
			RemoteURL: envOr("PRINT_URL", ""),
			Timeout:   envDuration("PRINT_TIMEOUT", 60*time.Second),
		},
		Credits: credits.Config{
			Backend:     envOr("CREDITS_BACKEND", "sqlite"),
			ClusterID:   uint64(envInt("TB_CLUSTER_ID", 0)),
			Addresses:   csvOr("TB_ADDRESSES", ""),
			RemoteURL:   envOr("CREDITS_URL", ""),
			RemoteToken: envOr("CREDITS_TOKEN", ""),
		},
		Packs: packs,
	}
	return cfg, nil
}

func envOr(k, def string) string {
	v := os.Getenv(prefix + k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(prefix + k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(prefix + k))
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(prefix+k), 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(prefix + k))
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	parts := strings.Split(envOr(k, def), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
