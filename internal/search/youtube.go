package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"fairytale/internal/model"
)

const (
	youtubeBase       = "https://www.googleapis.com"
	youtubeMaxResults = 5
	youtubeWatchURL   = "https://www.youtube.com/watch?v="
)

// 主题到检索关键词，未登记的主题不检索
var themeKeywords = map[string]string{
	"piano":     "piano",
	"guitar":    "guitar",
	"nature":    "nature sounds",
	"moon":      "moonlight",
	"sky":       "sky",
	"classical": "classical",
}

// KeywordFor 返回主题对应的检索关键词
func KeywordFor(theme string) (string, bool) {
	kw, ok := themeKeywords[strings.TrimSpace(theme)]
	return kw, ok
}

// YouTube 视频检索客户端
type YouTube struct {
	apiClient
	APIKey string
}

// NewYouTube 创建视频检索客户端
func NewYouTube(apiKey string, httpClient *http.Client, log logrus.FieldLogger) *YouTube {
	return &YouTube{apiClient: newAPIClient(youtubeBase, httpClient, log), APIKey: apiKey}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search 检索主题相关的摇篮曲视频。未登记的主题直接返回空列表，不请求上游。
func (y *YouTube) Search(ctx context.Context, theme string) ([]model.VideoResult, error) {
	kw, ok := KeywordFor(theme)
	if !ok {
		y.log.WithField("theme", theme).Info("未登记的视频主题")
		return []model.VideoResult{}, nil
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("maxResults", strconv.Itoa(youtubeMaxResults))
	q.Set("type", "video")
	q.Set("q", kw+" baby lullaby")
	q.Set("key", y.APIKey)

	var resp youtubeSearchResponse
	if err := y.getJSON(ctx, "/youtube/v3/search", q, &resp); err != nil {
		return nil, err
	}

	results := make([]model.VideoResult, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ID.VideoID == "" {
			continue
		}
		results = append(results, model.VideoResult{
			Title:     it.Snippet.Title,
			URL:       youtubeWatchURL + it.ID.VideoID,
			Thumbnail: it.Snippet.Thumbnails.Medium.URL,
		})
	}
	y.log.WithFields(logrus.Fields{"keyword": kw, "count": len(results)}).Info("视频检索完成")
	return results, nil
}
