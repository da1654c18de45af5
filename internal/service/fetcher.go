package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Kind 下载资源的类别，决定缺省扩展名
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// DefaultExt 无法从 content-type 推断时使用的扩展名
func (k Kind) DefaultExt() string {
	switch k {
	case KindImage:
		return ".jpg"
	case KindAudio:
		return ".mp3"
	case KindVideo:
		return ".mp4"
	default:
		return ".tmp"
	}
}

// Fetcher 下载远程图片、音频、视频
type Fetcher struct {
	client *http.Client
	log    logrus.FieldLogger
}

// NewFetcher 创建下载器，timeout 覆盖整个请求（含读取响应体）
func NewFetcher(timeout time.Duration, log logrus.FieldLogger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Get 发起 GET 请求，非 2xx 状态返回 ErrRemoteFetch。调用方负责关闭响应体。
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	if !IsRemote(rawURL) {
		return nil, fmt.Errorf("%w: not an absolute http(s) url: %q", apperr.ErrValidation, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrRemoteFetch, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s: http %d", apperr.ErrRemoteFetch, rawURL, res.StatusCode)
	}
	return res, nil
}

// Fetch 把远程资源流式写入 dir 下一个新文件，返回其绝对路径。
// dir 由调用方创建并负责清理。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, kind Kind, dir string) (string, error) {
	res, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	ext := ExtensionFor(kind, res.Header.Get("Content-Type"))
	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", kind, ShortID(), ext))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	n, copyErr := io.Copy(file, res.Body)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: download %s: %w", apperr.ErrRemoteFetch, rawURL, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	f.log.WithFields(logrus.Fields{"kind": kind, "path": abs, "bytes": n}).Info("文件下载完成")
	return abs, nil
}

// ExtensionFor 根据 content-type 推断扩展名，类型与 kind 不一致或无法识别时使用缺省扩展名
func ExtensionFor(kind Kind, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, string(kind)+"/") {
		return kind.DefaultExt()
	}
	m := mimetype.Lookup(mediaType)
	if m == nil || m.Extension() == "" {
		return kind.DefaultExt()
	}
	return m.Extension()
}

// IsRemote 判断输入是否为 http(s) 绝对 URL
func IsRemote(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ShortID 8 位十六进制随机串，用于生成不冲突的文件名
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewScope 在 root 下创建一次操作专用的临时目录。
// release 可重复调用，会删除目录及其内容。
func NewScope(root string) (string, func(), error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return "", func() {}, err
		}
	}
	dir, err := os.MkdirTemp(root, "fairytale-")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp dir: %w", err)
	}
	var once sync.Once
	release := func() {
		once.Do(func() { os.RemoveAll(dir) })
	}
	return dir, release, nil
}

// moveFile 将文件移动到 dstDir/name，跨设备时退化为复制后删除
func moveFile(src, dstDir, name string) (string, error) {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", apperr.ErrEncode, dstDir, err)
	}
	dst := filepath.Join(dstDir, name)
	if err := os.Rename(src, dst); err == nil {
		return filepath.Abs(dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrEncode, err)
	}
	_, copyErr := io.Copy(out, in)
	if err := errors.Join(copyErr, out.Close()); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: move %s: %w", apperr.ErrEncode, src, err)
	}
	os.Remove(src)
	return filepath.Abs(dst)
}
