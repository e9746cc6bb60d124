package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEOAPIFY_API_KEY", "OPENAI_API_KEY", "TELEGRAM_BOT_TOKEN",
		"GENERATION_PROVIDER", "PROFILE_FILE", "REQUEST_TIMEOUT_SECONDS", "SESSION_TTL",
		"MAX_CONCURRENT", "ENABLE_CHAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"GEMINI_API_KEY":   "g-key",
		"GEOAPIFY_API_KEY": "geo-key",
	})

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != ProviderGemini || cfg.GeminiModel != "gemini-1.5-pro" {
		t.Errorf("provider/model = %s/%s", cfg.Provider, cfg.GeminiModel)
	}
	if !cfg.EnableChat {
		t.Error("chat should be enabled by default")
	}
	if cfg.RequestTimeout != 180*time.Second || cfg.SessionTTL != 2*time.Hour {
		t.Errorf("timeouts = %v/%v", cfg.RequestTimeout, cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
	if cfg.Profile.Sampling.TopK != 64 || cfg.Profile.Search.RadiusMeters != 5000 || cfg.Profile.Search.Limit != 5 {
		t.Errorf("profile = %+v", cfg.Profile)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		opts    LoadOptions
		missing []string
	}{
		{"nothing set", nil, LoadOptions{}, []string{"GEMINI_API_KEY", "GEOAPIFY_API_KEY"}},
		{"places key missing", map[string]string{"GEMINI_API_KEY": "g"}, LoadOptions{}, []string{"GEOAPIFY_API_KEY"}},
		{"openai provider", map[string]string{"GENERATION_PROVIDER": "openai", "GEOAPIFY_API_KEY": "geo"}, LoadOptions{}, []string{"OPENAI_API_KEY"}},
		{"bot token", map[string]string{"GEMINI_API_KEY": "g", "GEOAPIFY_API_KEY": "geo"}, LoadOptions{RequireTelegram: true}, []string{"TELEGRAM_BOT_TOKEN"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load(tc.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			for _, key := range tc.missing {
				if !strings.Contains(err.Error(), key) {
					t.Errorf("error %q does not mention %s", err, key)
				}
			}
		})
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	setEnv(t, map[string]string{"GENERATION_PROVIDER": "llama", "GEOAPIFY_API_KEY": "geo"})
	if _, err := Load(LoadOptions{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadDurationsAndNormalize(t *testing.T) {
	setEnv(t, map[string]string{
		"GEMINI_API_KEY":          "g",
		"GEOAPIFY_API_KEY":        "geo",
		"REQUEST_TIMEOUT_SECONDS": "45",
		"SESSION_TTL":             "30m",
		"MAX_CONCURRENT":          "0",
		"ENABLE_CHAT":             "false",
	})

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", cfg.MaxConcurrent)
	}
	if cfg.EnableChat {
		t.Error("ENABLE_CHAT=false should disable chat")
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	data := `
sampling:
  temperature: 0.4
  max_output_tokens: 2048
search:
  radius_meters: 2500
prompts:
  assistant: "You are a terse assistant."
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Sampling.Temperature != 0.4 || p.Sampling.MaxOutputTokens != 2048 {
		t.Errorf("sampling = %+v", p.Sampling)
	}
	if p.Sampling.TopP != 0.95 || p.Sampling.TopK != 64 {
		t.Errorf("untouched sampling keys should keep defaults: %+v", p.Sampling)
	}
	if p.Search.RadiusMeters != 2500 || p.Search.Limit != 5 || p.Search.Categories != "healthcare.hospital" {
		t.Errorf("search = %+v", p.Search)
	}
	if p.Prompts.Assistant != "You are a terse assistant." {
		t.Errorf("assistant prompt = %q", p.Prompts.Assistant)
	}
	if !strings.Contains(p.Prompts.ImageAnalysis, "medical practitioner") {
		t.Error("image analysis prompt should keep its default")
	}
}

func TestLoadProfileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("sampling: [1, 2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("sampling:\n  top_p: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(invalid); err == nil {
		t.Error("expected validation error")
	}

	if _, err := LoadProfile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}
