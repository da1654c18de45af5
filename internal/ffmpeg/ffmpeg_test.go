package ffmpeg

import (
	"context"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"fairytale/internal/apperr"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{"plain", "3.000000\n", 3.0, false},
		{"spaces", "  12.5  ", 12.5, false},
		{"empty", "", 0, true},
		{"na", "N/A", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1.0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(0.5); got != "0.500" {
		t.Errorf("Expected 0.500, got %s", got)
	}
}

func TestMissingBinaryIsDecodeError(t *testing.T) {
	c := New("/nonexistent/ffmpeg", "/nonexistent/ffprobe", nil)
	_, err := c.Duration(context.Background(), "audio.mp3")
	if !errors.Is(err, apperr.ErrMediaDecode) {
		t.Errorf("Expected ErrMediaDecode, got %v", err)
	}
	err = c.StillVideo(context.Background(), "a.png", "a.mp3", "out.mp4", 1)
	if !errors.Is(err, apperr.ErrEncode) {
		t.Errorf("Expected ErrEncode, got %v", err)
	}
	ffmpeg, ffprobe := c.Available()
	if ffmpeg || ffprobe {
		t.Error("Expected binaries to be unavailable")
	}
}

func requireBinaries(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

// 用 lavfi 生成测试素材：一张纯色图片和一段 3 秒正弦波音频
func makeFixtures(t *testing.T, dir string) (imagePath, audioPath string) {
	t.Helper()
	imagePath = filepath.Join(dir, "image.png")
	audioPath = filepath.Join(dir, "audio.mp3")
	cmds := [][]string{
		{"-y", "-f", "lavfi", "-i", "color=c=orange:s=640x480", "-frames:v", "1", imagePath},
		{"-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=3", "-c:a", "libmp3lame", audioPath},
	}
	for _, args := range cmds {
		if out, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
			t.Skipf("cannot create fixture: %v: %s", err, out)
		}
	}
	return imagePath, audioPath
}

func TestStillVideoMatchesAudioDuration(t *testing.T) {
	requireBinaries(t)
	dir := t.TempDir()
	imagePath, audioPath := makeFixtures(t, dir)
	c := New("", "", nil)
	ctx := context.Background()

	audioDuration, err := c.Duration(ctx, audioPath)
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}

	outPath := filepath.Join(dir, "video.mp4")
	if err := c.StillVideo(ctx, imagePath, audioPath, outPath, audioDuration); err != nil {
		t.Fatalf("StillVideo failed: %v", err)
	}

	videoDuration, err := c.Duration(ctx, outPath)
	if err != nil {
		t.Fatalf("Duration of output failed: %v", err)
	}
	// AAC 编码器会引入少量首尾填充
	if math.Abs(videoDuration-audioDuration) > 0.1 {
		t.Errorf("Expected duration ≈ %.3f, got %.3f", audioDuration, videoDuration)
	}

	thumbPath := filepath.Join(dir, "thumb.jpg")
	if err := c.Frame(ctx, outPath, math.Min(0.5, videoDuration/2), thumbPath); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if info, err := os.Stat(thumbPath); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty thumbnail, err=%v", err)
	}
}
