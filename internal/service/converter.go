package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
	"fairytale/internal/lineart"
)

// BWImagePrefix 自动生成的线稿文件名前缀
const BWImagePrefix = "bw_fairy_tale_image"

// LineDrawing 线稿转换结果
type LineDrawing struct {
	Path string // 线稿 PNG 的路径
	PNG  []byte // PNG 内容，供接口直接以 base64 返回
}

// Converter 把插画转换为填色用线稿
type Converter struct {
	fetcher *Fetcher
	outDir  string
	log     logrus.FieldLogger
}

// NewConverter 创建线稿转换器，未指定输出路径时写入 outDir
func NewConverter(fetcher *Fetcher, outDir string, log logrus.FieldLogger) *Converter {
	return &Converter{fetcher: fetcher, outDir: outDir, log: log}
}

// OutDir 自动命名的线稿所在目录
func (c *Converter) OutDir() string {
	return c.outDir
}

// ToLineDrawing 读取 input（URL 或本地路径）并生成线稿。
// outputPath 为空时在 outDir 下自动生成不冲突的文件名。
func (c *Converter) ToLineDrawing(ctx context.Context, input, outputPath string) (*LineDrawing, error) {
	log := c.log.WithField("input", input)

	src, err := c.readSource(ctx, input)
	if err != nil {
		log.WithError(err).Error("读取图片失败")
		return nil, err
	}

	img, err := lineart.Decode(bytes.NewReader(src))
	if err != nil {
		log.WithError(err).Error("图片解码失败")
		return nil, fmt.Errorf("%w: %w", apperr.ErrMediaDecode, err)
	}

	var buf bytes.Buffer
	if err := lineart.EncodePNG(&buf, lineart.Transform(img)); err != nil {
		log.WithError(err).Error("线稿编码失败")
		return nil, fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}

	path, err := c.write(outputPath, buf.Bytes())
	if err != nil {
		log.WithError(err).Error("线稿保存失败")
		return nil, err
	}

	log.WithField("output", path).Info("线稿转换完成")
	return &LineDrawing{Path: path, PNG: buf.Bytes()}, nil
}

func (c *Converter) readSource(ctx context.Context, input string) ([]byte, error) {
	if IsRemote(input) {
		res, err := c.fetcher.Get(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperr.ErrSourceUnavailable, err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s: http %d", apperr.ErrSourceUnavailable, input, res.StatusCode)
		}
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %w", apperr.ErrSourceUnavailable, apperr.ErrRemoteFetch, err)
		}
		return b, nil
	}

	b, err := os.ReadFile(input)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w: %s", apperr.ErrSourceUnavailable, apperr.ErrNotFound, input)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrSourceUnavailable, err)
	}
	return b, nil
}

func (c *Converter) write(outputPath string, data []byte) (string, error) {
	var (
		f   *os.File
		err error
	)
	if outputPath == "" {
		outputPath, f, err = ReserveBWImagePath(c.outDir)
	} else {
		if dir := filepath.Dir(outputPath); dir != "" {
			err = os.MkdirAll(dir, 0o755)
		}
		if err == nil {
			f, err = os.Create(outputPath)
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}

	_, writeErr := f.Write(data)
	if err := errors.Join(writeErr, f.Close()); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("%w: write %s: %w", apperr.ErrEncode, outputPath, err)
	}
	return outputPath, nil
}

// ReserveBWImagePath 从 N=0 开始依次尝试 bw_fairy_tale_image_N.png，
// 以 O_EXCL 创建第一个不存在的文件，并发请求不会拿到同一个名字。
func ReserveBWImagePath(dir string) (string, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	for n := 0; ; n++ {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", BWImagePrefix, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, err
		}
	}
}
