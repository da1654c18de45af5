package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func lookup(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func fullEnv() map[string]string {
	return map[string]string{
		"OPENAI_API_KEY":    "sk-test",
		"JAMENDO_CLIENT_ID": "jamendo-id",
		"JAMENDO_API_KEY":   "jamendo-key",
		"YOUTUBE_API_KEY":   "yt-key",
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookup(fullEnv()))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg.Addr != defaultAddr {
		t.Errorf("Expected addr %s, got %s", defaultAddr, cfg.Addr)
	}
	if cfg.ImageAPIKey != "sk-test" {
		t.Errorf("Expected image key to fall back to OpenAI key, got %q", cfg.ImageAPIKey)
	}
	if cfg.LLMModel != defaultLLMModel {
		t.Errorf("Expected model %s, got %s", defaultLLMModel, cfg.LLMModel)
	}
	if cfg.FetchTimeout != defaultFetchTimeout {
		t.Errorf("Expected timeout %v, got %v", defaultFetchTimeout, cfg.FetchTimeout)
	}
	if cfg.VideoDir() != filepath.Join("output", "videos") {
		t.Errorf("Unexpected video dir %s", cfg.VideoDir())
	}
	if cfg.BWImageDir() != filepath.Join("output", "bwimages") {
		t.Errorf("Unexpected bw dir %s", cfg.BWImageDir())
	}
}

func TestFromLookupOverrides(t *testing.T) {
	env := fullEnv()
	delete(env, "YOUTUBE_API_KEY")
	env["GOOGLE_API_KEY"] = "google-key"
	env["IMAGE_API_KEY"] = "img-key"
	env["FETCH_TIMEOUT"] = "15s"
	env["OUTPUT_DIR"] = "/data/out"

	cfg, err := FromLookup(lookup(env))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg.YouTubeAPIKey != "google-key" {
		t.Errorf("Expected GOOGLE_API_KEY alias, got %q", cfg.YouTubeAPIKey)
	}
	if cfg.ImageAPIKey != "img-key" {
		t.Errorf("Expected image key override, got %q", cfg.ImageAPIKey)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected 15s, got %v", cfg.FetchTimeout)
	}
	if cfg.ThumbnailDir() != filepath.Join("/data/out", "thumbnails") {
		t.Errorf("Unexpected thumbnail dir %s", cfg.ThumbnailDir())
	}
}

func TestFromLookupMissingKeys(t *testing.T) {
	env := fullEnv()
	delete(env, "OPENAI_API_KEY")
	delete(env, "JAMENDO_API_KEY")

	_, err := FromLookup(lookup(env))
	if err == nil {
		t.Fatal("Expected error for missing keys")
	}
	for _, name := range []string{"OPENAI_API_KEY", "JAMENDO_API_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Expected error to mention %s, got %v", name, err)
		}
	}
}

func TestFromLookupInvalidTimeout(t *testing.T) {
	env := fullEnv()
	env["FETCH_TIMEOUT"] = "soon"
	if _, err := FromLookup(lookup(env)); err == nil {
		t.Error("Expected error for invalid FETCH_TIMEOUT")
	}
}

func TestInitLogger(t *testing.T) {
	cfg, err := FromLookup(lookup(fullEnv()))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "app.log")

	logger, closeLog, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	defer closeLog()
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}

	cfg.LogLevel = "loud"
	if _, _, err := InitLogger(cfg); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestFromLookupArkProvider(t *testing.T) {
	env := fullEnv()
	env["LLM_PROVIDER"] = "Ark"

	_, err := FromLookup(lookup(env))
	if err == nil || !strings.Contains(err.Error(), "ARK_API_KEY") || !strings.Contains(err.Error(), "ARK_MODEL") {
		t.Fatalf("Expected missing ark keys, got %v", err)
	}

	env["ARK_API_KEY"] = "ark-key"
	env["ARK_MODEL"] = "ep-123"
	cfg, err := FromLookup(lookup(env))
	if err != nil {
		t.Fatalf("FromLookup failed: %v", err)
	}
	if cfg.LLMProvider != ProviderArk {
		t.Errorf("Expected ark provider, got %q", cfg.LLMProvider)
	}

	env["LLM_PROVIDER"] = "claude"
	if _, err := FromLookup(lookup(env)); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
