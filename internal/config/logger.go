package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger 初始化日志：带完整时间戳的文本格式，可选同时写入日志文件
func InitLogger(cfg *Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("配置错误: LOG_LEVEL 无效: %w", err)
	}
	logger.SetLevel(level)

	if cfg.LogFile == "" {
		return logger, func() {}, nil
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return logger, func() { _ = logFile.Close() }, nil
}
