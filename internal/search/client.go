// Package search 查询摇篮曲曲库（Jamendo）与视频平台（YouTube）。
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

const defaultTimeout = 30 * time.Second

// apiClient 两个检索服务共用的只读 JSON 客户端
type apiClient struct {
	BaseURL    string
	HTTPClient *http.Client
	log        logrus.FieldLogger
}

func newAPIClient(baseURL string, httpClient *http.Client, log logrus.FieldLogger) apiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return apiClient{BaseURL: baseURL, HTTPClient: httpClient, log: log}
}

func (c apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrRemoteFetch, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrRemoteFetch, err)
	}
	if res.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{"path": path, "status": res.StatusCode}).Warn("检索服务返回异常状态")
		return fmt.Errorf("%w: %s: http %d: %s", apperr.ErrRemoteFetch, path, res.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", apperr.ErrRemoteFetch, path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
