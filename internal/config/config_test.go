package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examforge/internal/credits"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "PDF_SERVICE_URL", "GOOGLE_APPLICATION_CREDENTIALS"} {
		t.Setenv(k, "")
	}
	t.Setenv(prefix+"DB", filepath.Join(t.TempDir(), "test.db"))
}

func TestFromEnv_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.EqualValues(t, 20<<20, cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.RequestTimeout)
	assert.True(t, cfg.RequireCredits)
	assert.Equal(t, 20, cfg.QCM.Target)
	assert.Equal(t, 30, cfg.QCM.PromptQuestions)
	assert.Equal(t, 0.6, cfg.QCM.Temperature)
	assert.Equal(t, "auto", cfg.PDFText.Backend)
	assert.Equal(t, time.Minute, cfg.PDFText.Timeout)
	assert.Equal(t, "disabled", cfg.Print.Backend)
	assert.Equal(t, "sqlite", cfg.Credits.Backend)
	assert.Empty(t, cfg.Credits.Addresses)
	assert.Equal(t, credits.DefaultPacks(), cfg.Packs)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
}

func TestFromEnv_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv(prefix+"ENV", "prod")
	t.Setenv(prefix+"HTTP_ADDR", ":9090")
	t.Setenv(prefix+"CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv(prefix+"MAX_UPLOAD_MB", "5")
	t.Setenv(prefix+"REQUIRE_CREDITS", "no")
	t.Setenv(prefix+"QCM_TEMPERATURE", "0.2")
	t.Setenv(prefix+"PDFTEXT_TIMEOUT", "15s")
	t.Setenv(prefix+"CREDITS_BACKEND", "tigerbeetle")
	t.Setenv(prefix+"TB_ADDRESSES", "3000,3001")
	t.Setenv("PDF_SERVICE_URL", "https://pdf.example/extract")
	t.Setenv(prefix+"PAYMENT_URL_10", "https://payhip.com/b/ten")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeProd, cfg.Mode)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.EqualValues(t, 5<<20, cfg.MaxUploadBytes)
	assert.False(t, cfg.RequireCredits)
	assert.Equal(t, 0.2, cfg.QCM.Temperature)
	assert.Equal(t, 15*time.Second, cfg.PDFText.Timeout)
	assert.Equal(t, "https://pdf.example/extract", cfg.PDFText.RemoteURL)
	assert.Equal(t, []string{"3000", "3001"}, cfg.Credits.Addresses)
	assert.Equal(t, "https://payhip.com/b/ten", cfg.Packs[1].PaymentURL)
	assert.Equal(t, credits.DefaultPaymentURL, cfg.Packs[0].PaymentURL)
}

func TestFromEnv_DiscoversLLMKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
}

func TestFromEnv_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv(prefix+"ENV", "staging")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv(prefix+"ENV", "")
	t.Setenv(prefix+"QCM_TARGET", "40")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)
	t.Setenv(prefix+"HTTP_ADDR", "")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EXAMFORGE_BLOB_DIR=/srv/exams\nEXAMFORGE_HTTP_ADDR=:7000\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(prefix + "BLOB_DIR") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/srv/exams", cfg.BlobDir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err, "a missing env file is ignored")
}

func TestLoadPacks_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "packs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`packs:
  - id: starter
    exams: 5
    price: 8
  - id: school
    exams: 100
    price: 60
    payment_url: https://payhip.com/b/school
`), 0o600))

	packs, err := loadPacks(path)
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "starter", packs[0].ID)
	assert.Equal(t, 8.0, packs[0].PriceUSD)
	assert.Equal(t, "https://payhip.com/b/school", packs[1].PaymentURL)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("packs: []\n"), 0o600))
	_, err = loadPacks(bad)
	assert.Error(t, err)

	_, err = loadPacks(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
