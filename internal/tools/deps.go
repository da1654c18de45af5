package tools

import (
	"context"

	"fairytale/internal/service"
)

// StoryWriter 故事生成
type StoryWriter interface {
	Write(ctx context.Context, name, theme string) (string, error)
}

// Illustrator 插画生成，返回图片 URL
type Illustrator interface {
	Illustrate(ctx context.Context, story string) (string, error)
}

// Narrator 语音合成，返回 MP3 字节
type Narrator interface {
	Speech(ctx context.Context, text, voice string, speed float64) ([]byte, error)
}

// LineArtist 线稿转换
type LineArtist interface {
	ToLineDrawing(ctx context.Context, input, outputPath string) (*service.LineDrawing, error)
}

// VideoComposer 视频合成与缩略图
type VideoComposer interface {
	ComposeVideo(ctx context.Context, imageURL, audioURL string) (*service.ComposeResult, error)
	ExtractThumbnail(ctx context.Context, videoSource string) (string, error)
}
