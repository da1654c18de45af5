// Package ffmpeg 通过 ffmpeg / ffprobe 命令行完成时长探测、静帧视频合成和单帧截取。
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const (
	// FrameRate 合成视频的帧率
	FrameRate = 24
	// Height 合成视频的垂直分辨率，宽度按比例缩放
	Height = 1080
)

// Tool 合成管线依赖的媒体操作
type Tool interface {
	// Duration 返回媒体文件时长（秒）
	Duration(ctx context.Context, path string) (float64, error)
	// StillVideo 用一张静态图片和一段音频合成视频
	StillVideo(ctx context.Context, imagePath, audioPath, outPath string, duration float64) error
	// Frame 截取 at 秒处的一帧并保存为 JPEG
	Frame(ctx context.Context, videoPath string, at float64, outPath string) error
}

// CLI 基于本地 ffmpeg / ffprobe 可执行文件的 Tool 实现
type CLI struct {
	FFmpegPath  string
	FFprobePath string
	log         logrus.FieldLogger
}

// New 创建 CLI，路径为空时使用 PATH 中的 ffmpeg / ffprobe
func New(ffmpegPath, ffprobePath string, log logrus.FieldLogger) *CLI {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &CLI{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, log: log}
}

// Available 报告 ffmpeg 与 ffprobe 是否可执行
func (c *CLI) Available() (ffmpeg, ffprobe bool) {
	_, err := exec.LookPath(c.FFmpegPath)
	ffmpeg = err == nil
	_, err = exec.LookPath(c.FFprobePath)
	ffprobe = err == nil
	return ffmpeg, ffprobe
}

func (c *CLI) Duration(ctx context.Context, path string) (float64, error) {
	out, err := c.run(ctx, c.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: probe %s: %w", apperr.ErrMediaDecode, path, err)
	}
	d, err := ParseDuration(out)
	if err != nil {
		return 0, fmt.Errorf("%w: probe %s: %w", apperr.ErrMediaDecode, path, err)
	}
	return d, nil
}

func (c *CLI) StillVideo(ctx context.Context, imagePath, audioPath, outPath string, duration float64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: invalid duration %.3f", apperr.ErrEncode, duration)
	}
	_, err := c.run(ctx, c.FFmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-loop", "1",
		"-framerate", strconv.Itoa(FrameRate),
		"-i", imagePath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-vf", fmt.Sprintf("scale=-2:%d,format=yuv420p", Height),
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-r", strconv.Itoa(FrameRate),
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", formatSeconds(duration),
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("%w: compose video: %w", apperr.ErrEncode, err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("%w: ffmpeg did not create output file %s: %w", apperr.ErrEncode, outPath, err)
	}
	return nil
}

func (c *CLI) Frame(ctx context.Context, videoPath string, at float64, outPath string) error {
	_, err := c.run(ctx, c.FFmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", formatSeconds(at),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("%w: extract frame: %w", apperr.ErrEncode, err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("%w: ffmpeg did not create output file %s: %w", apperr.ErrEncode, outPath, err)
	}
	return nil
}

func (c *CLI) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if c.log != nil {
		c.log.WithField("cmd", name).Debugf("exec %s", strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}

// ParseDuration 解析 ffprobe 输出的秒数
func ParseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

var _ Tool = (*CLI)(nil)
