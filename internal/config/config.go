package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 故事生成可选的模型供应方
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

const (
	defaultAddr         = ":8000"
	defaultOutputDir    = "output"
	defaultLLMModel     = "gpt-3.5-turbo"
	defaultFetchTimeout = 60 * time.Second
)

// Config 服务启动时一次性读取并校验的配置
type Config struct {
	Addr string

	OpenAIAPIKey string // 故事生成与语音合成
	ImageAPIKey  string // 图片生成，未配置时沿用 OpenAIAPIKey
	LLMModel     string
	LLMBaseURL   string

	LLMProvider string // openai 或 ark
	ArkAPIKey   string
	ArkModel    string // 方舟推理接入点

	JamendoClientID string
	JamendoAPIKey   string
	YouTubeAPIKey   string

	OutputDir    string
	TempDir      string
	FetchTimeout time.Duration

	FFmpegPath  string
	FFprobePath string

	LogLevel string
	LogFile  string
}

// Load 加载 .env（可选）后从环境变量读取配置
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}
	return FromLookup(os.Getenv)
}

// FromLookup 使用给定的查找函数构建配置，便于测试
func FromLookup(getenv func(string) string) (*Config, error) {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	cfg := &Config{
		Addr:            orDefault(get("ADDR"), defaultAddr),
		OpenAIAPIKey:    get("OPENAI_API_KEY"),
		ImageAPIKey:     get("IMAGE_API_KEY", "OPENAI_API_KEY"),
		LLMModel:        orDefault(get("LLM_MODEL"), defaultLLMModel),
		LLMBaseURL:      get("LLM_BASE_URL"),
		LLMProvider:     strings.ToLower(orDefault(get("LLM_PROVIDER"), ProviderOpenAI)),
		ArkAPIKey:       get("ARK_API_KEY"),
		ArkModel:        get("ARK_MODEL"),
		JamendoClientID: get("JAMENDO_CLIENT_ID"),
		JamendoAPIKey:   get("JAMENDO_API_KEY"),
		YouTubeAPIKey:   get("YOUTUBE_API_KEY", "GOOGLE_API_KEY"),
		OutputDir:       orDefault(get("OUTPUT_DIR"), defaultOutputDir),
		TempDir:         orDefault(get("TEMP_DIR"), os.TempDir()),
		FetchTimeout:    defaultFetchTimeout,
		FFmpegPath:      orDefault(get("FFMPEG_PATH"), "ffmpeg"),
		FFprobePath:     orDefault(get("FFPROBE_PATH"), "ffprobe"),
		LogLevel:        orDefault(get("LOG_LEVEL"), "info"),
		LogFile:         get("LOG_FILE"),
	}

	if raw := get("FETCH_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("配置错误: FETCH_TIMEOUT 无效: %q", raw)
		}
		cfg.FetchTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envVar struct {
	name  string
	value string
}

// Validate 检查必需的密钥是否都已配置
func (c *Config) Validate() error {
	required := []envVar{
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"JAMENDO_CLIENT_ID", c.JamendoClientID},
		{"JAMENDO_API_KEY", c.JamendoAPIKey},
		{"YOUTUBE_API_KEY", c.YouTubeAPIKey},
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
	case ProviderArk:
		required = append(required, envVar{"ARK_API_KEY", c.ArkAPIKey}, envVar{"ARK_MODEL", c.ArkModel})
	default:
		return fmt.Errorf("配置错误: LLM_PROVIDER 无效: %q", c.LLMProvider)
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("配置错误: 缺少环境变量 %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) VideoDir() string     { return filepath.Join(c.OutputDir, "videos") }
func (c *Config) ThumbnailDir() string { return filepath.Join(c.OutputDir, "thumbnails") }
func (c *Config) BWImageDir() string   { return filepath.Join(c.OutputDir, "bwimages") }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
