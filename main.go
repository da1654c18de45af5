package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fairytale/internal/agent"
	"fairytale/internal/config"
	"fairytale/internal/ffmpeg"
	"fairytale/internal/handler"
	"fairytale/internal/openaiapi"
	"fairytale/internal/search"
	"fairytale/internal/service"
	"fairytale/internal/tools"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 读取配置，缺少密钥时直接退出
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 初始化日志
	logger, closeLog, err := config.InitLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()

	// 初始化故事生成
	chatModel, err := agent.NewChatModel(ctx, cfg)
	if err != nil {
		return err
	}
	writer, err := agent.NewStoryWriter(ctx, chatModel, logger.WithField("component", "story"))
	if err != nil {
		return err
	}

	// 初始化媒体管线
	openaiClient := openaiapi.New(openaiapi.Config{
		APIKey:      cfg.OpenAIAPIKey,
		ImageAPIKey: cfg.ImageAPIKey,
	}, logger.WithField("component", "openai"))

	fetcher := service.NewFetcher(cfg.FetchTimeout, logger.WithField("component", "fetcher"))
	converter := service.NewConverter(fetcher, cfg.BWImageDir(), logger.WithField("component", "lineart"))
	mediaTool := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, logger.WithField("component", "ffmpeg"))
	composer := service.NewComposer(fetcher, mediaTool, cfg.TempDir, cfg.VideoDir(), cfg.ThumbnailDir(),
		logger.WithField("component", "composer"))
	if err := composer.EnsureDirs(); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if ok, probe := mediaTool.Available(); !ok || !probe {
		logger.WithFields(logrus.Fields{"ffmpeg": ok, "ffprobe": probe}).Warn("ffmpeg 不可用，视频接口将返回失败")
	}

	// 初始化检索
	jamendo := search.NewJamendo(cfg.JamendoClientID, nil, logger.WithField("component", "jamendo"))
	youtube := search.NewYouTube(cfg.YouTubeAPIKey, nil, logger.WithField("component", "youtube"))

	// 初始化工具
	registry, err := tools.NewRegistry(ctx,
		tools.NewStoryTool(writer),
		tools.NewImageTool(openaiClient),
		tools.NewVoiceTool(openaiClient),
		tools.NewBWImageTool(converter),
		tools.NewVideoTool(composer),
		tools.NewThumbnailTool(composer),
	)
	if err != nil {
		return err
	}

	// 绘本助手只使用不依赖音频的工具
	agentTools, err := registry.Select("story_generate", "image_generate", "bw_image_convert")
	if err != nil {
		return err
	}
	storybook, err := agent.NewStorybook(ctx, chatModel, agentTools, logger.WithField("component", "agent"))
	if err != nil {
		return err
	}

	router := handler.NewRouter(handler.Deps{
		Story:       writer,
		Narrator:    openaiClient,
		Illustrator: openaiClient,
		LineArtist:  converter,
		BWImageDir:  cfg.BWImageDir(),
		Music:       jamendo,
		Videos:      youtube,
		Pipeline:    composer,
		Tools:       registry,
		Assistant:   storybook,
		Log:         logger.WithField("component", "http"),
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务器启动在 %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务器失败: %w", err)
	case <-quit:
	}
	logger.Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}
	logger.Info("服务器已关闭")
	return nil
}
