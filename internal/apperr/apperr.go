// Package apperr 定义服务内部统一使用的错误类别，以及错误到 HTTP 状态码的映射。
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation 请求字段缺失或格式不正确
	ErrValidation = errors.New("validation error")
	// ErrRemoteFetch 远程资源返回非成功状态或无法连接
	ErrRemoteFetch = errors.New("remote fetch error")
	// ErrSourceUnavailable 转换源（URL 或本地路径）不可用
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNotFound 本地文件不存在
	ErrNotFound = errors.New("resource not found")
	// ErrMediaDecode 图片、音频或视频无法解码
	ErrMediaDecode = errors.New("media decode error")
	// ErrEncode 编码或写入产物失败
	ErrEncode = errors.New("encode error")
	// ErrUpstream LLM / TTS / 图片生成服务调用失败
	ErrUpstream = errors.New("upstream api error")
)

// Status 将错误映射为 HTTP 状态码。remote 为 ErrRemoteFetch 对应的状态码，
// 不同接口对远程失败的处理不同（502 或 400）。
func Status(err error, remote int) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRemoteFetch):
		return remote
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrMediaDecode), errors.Is(err, ErrEncode), errors.Is(err, ErrUpstream):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
