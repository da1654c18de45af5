package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
	"fairytale/internal/ffmpeg"
)

// ComposeResult 视频合成结果
type ComposeResult struct {
	VideoPath string  // 最终视频的绝对路径
	Duration  float64 // 音频时长（秒），即视频时长
}

// PipelineStatus 视频管线自检结果
type PipelineStatus struct {
	FFmpeg       bool   `json:"ffmpeg"`
	FFprobe      bool   `json:"ffprobe"`
	VideoDir     string `json:"video_dir"`
	ThumbnailDir string `json:"thumbnail_dir"`
	TempDir      string `json:"temp_dir"`
	DirsReady    bool   `json:"dirs_ready"`
}

// availability 由能报告本地可执行文件状态的 Tool 实现
type availability interface {
	Available() (ffmpeg, ffprobe bool)
}

// Composer 把插画与旁白合成为视频，并负责截取缩略图
type Composer struct {
	fetcher  *Fetcher
	tool     ffmpeg.Tool
	tempRoot string
	videoDir string
	thumbDir string
	log      logrus.FieldLogger
}

// NewComposer 创建视频合成器。tempRoot 为空时使用系统临时目录。
func NewComposer(fetcher *Fetcher, tool ffmpeg.Tool, tempRoot, videoDir, thumbDir string, log logrus.FieldLogger) *Composer {
	return &Composer{
		fetcher:  fetcher,
		tool:     tool,
		tempRoot: tempRoot,
		videoDir: videoDir,
		thumbDir: thumbDir,
		log:      log,
	}
}

// ComposeVideo 下载图片和音频，按音频时长合成静帧视频。
// 本次操作的临时文件无论成功与否都会被清理。
func (c *Composer) ComposeVideo(ctx context.Context, imageURL, audioURL string) (*ComposeResult, error) {
	log := c.log.WithFields(logrus.Fields{"image_url": imageURL, "audio_url": audioURL})

	dir, release, err := NewScope(c.tempRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}
	defer release()

	imagePath, err := c.fetcher.Fetch(ctx, imageURL, KindImage, dir)
	if err != nil {
		log.WithError(err).Error("图片下载失败")
		return nil, fmt.Errorf("image: %w", err)
	}
	audioPath, err := c.fetcher.Fetch(ctx, audioURL, KindAudio, dir)
	if err != nil {
		log.WithError(err).Error("音频下载失败")
		return nil, fmt.Errorf("audio: %w", err)
	}

	duration, err := c.tool.Duration(ctx, audioPath)
	if err != nil {
		log.WithError(err).Error("音频时长探测失败")
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: audio has no duration", apperr.ErrMediaDecode)
	}

	name := fmt.Sprintf("video_%s.mp4", ShortID())
	tmpOut := filepath.Join(dir, name)
	if err := c.tool.StillVideo(ctx, imagePath, audioPath, tmpOut, duration); err != nil {
		log.WithError(err).Error("视频合成失败")
		return nil, err
	}

	final, err := moveFile(tmpOut, c.videoDir, name)
	if err != nil {
		log.WithError(err).Error("视频保存失败")
		return nil, err
	}

	log.WithFields(logrus.Fields{"video": final, "duration": duration}).Info("视频合成完成")
	return &ComposeResult{VideoPath: final, Duration: duration}, nil
}

// ExtractThumbnail 截取视频的一帧作为缩略图，videoSource 可以是 URL 或本地路径。
// 截取时间点为 min(0.5, 时长/2) 秒。
func (c *Composer) ExtractThumbnail(ctx context.Context, videoSource string) (string, error) {
	log := c.log.WithField("video", videoSource)

	dir, release, err := NewScope(c.tempRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}
	defer release()

	videoPath := videoSource
	if IsRemote(videoSource) {
		videoPath, err = c.fetcher.Fetch(ctx, videoSource, KindVideo, dir)
		if err != nil {
			log.WithError(err).Error("视频下载失败")
			return "", err
		}
	} else if _, err := os.Stat(videoSource); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotFound, videoSource)
	} else if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrMediaDecode, err)
	}

	duration, err := c.tool.Duration(ctx, videoPath)
	if err != nil {
		log.WithError(err).Error("视频时长探测失败")
		return "", err
	}

	name := fmt.Sprintf("thumbnail_%s.jpg", ShortID())
	tmpOut := filepath.Join(dir, name)
	if err := c.tool.Frame(ctx, videoPath, ThumbnailAt(duration), tmpOut); err != nil {
		log.WithError(err).Error("缩略图截取失败")
		return "", err
	}

	final, err := moveFile(tmpOut, c.thumbDir, name)
	if err != nil {
		return "", err
	}
	log.WithField("thumbnail", final).Info("缩略图生成完成")
	return final, nil
}

// ThumbnailAt 缩略图截取时间点
func ThumbnailAt(duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return math.Min(0.5, duration/2)
}

// Status 报告 ffmpeg / ffprobe 是否可用以及输出目录是否就绪
func (c *Composer) Status() PipelineStatus {
	st := PipelineStatus{
		VideoDir:     c.videoDir,
		ThumbnailDir: c.thumbDir,
		TempDir:      c.tempRoot,
	}
	if st.TempDir == "" {
		st.TempDir = os.TempDir()
	}
	if a, ok := c.tool.(availability); ok {
		st.FFmpeg, st.FFprobe = a.Available()
	} else {
		st.FFmpeg, st.FFprobe = true, true
	}
	st.DirsReady = isDir(c.videoDir) && isDir(c.thumbDir)
	return st
}

// EnsureDirs 创建视频与缩略图输出目录
func (c *Composer) EnsureDirs() error {
	for _, d := range []string{c.videoDir, c.thumbDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
