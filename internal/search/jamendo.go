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
	jamendoBase  = "https://api.jamendo.com"
	jamendoLimit = 5
	defaultTag   = "lullaby"
)

// 客户端展示用的主题名与曲库标签的对应关系
var themeTags = map[string]string{
	"잔잔한 피아노": "piano",
	"기타 멜로디":  "guitar",
	"자연의 소리":  "nature",
	"달빛":      "moon",
	"하늘":      "sky",
	"클래식":     "classical",
}

// TagFor 把主题转换为曲库标签，未登记的主题原样作为标签
func TagFor(theme string) string {
	theme = strings.TrimSpace(theme)
	if tag, ok := themeTags[theme]; ok {
		return tag
	}
	if theme == "" {
		return defaultTag
	}
	return theme
}

// Jamendo 音乐曲库客户端
type Jamendo struct {
	apiClient
	ClientID string
}

// NewJamendo 创建曲库客户端，httpClient 为空时使用默认超时
func NewJamendo(clientID string, httpClient *http.Client, log logrus.FieldLogger) *Jamendo {
	return &Jamendo{apiClient: newAPIClient(jamendoBase, httpClient, log), ClientID: clientID}
}

type jamendoTrack struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Duration      any    `json:"duration"`
	ArtistName    string `json:"artist_name"`
	Audio         string `json:"audio"`
	AudioDownload string `json:"audiodownload"`
	Image         string `json:"image"`
	ShareURL      string `json:"shareurl"`
}

// Search 按主题检索曲目，最多返回 5 首
func (j *Jamendo) Search(ctx context.Context, theme string) ([]model.MusicTrack, error) {
	tag := TagFor(theme)
	q := url.Values{}
	q.Set("client_id", j.ClientID)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(jamendoLimit))
	q.Set("tags", tag)
	q.Set("audioformat", "mp32")

	var resp struct {
		Results []jamendoTrack `json:"results"`
	}
	if err := j.getJSON(ctx, "/v3.0/tracks/", q, &resp); err != nil {
		return nil, err
	}

	tracks := make([]model.MusicTrack, 0, len(resp.Results))
	for _, r := range resp.Results {
		tracks = append(tracks, model.MusicTrack{
			ID:            r.ID,
			Name:          r.Name,
			Duration:      toInt(r.Duration),
			ArtistName:    r.ArtistName,
			Audio:         r.Audio,
			AudioDownload: r.AudioDownload,
			Image:         r.Image,
			ShareURL:      r.ShareURL,
		})
	}
	j.log.WithFields(logrus.Fields{"tag": tag, "count": len(tracks)}).Info("曲库检索完成")
	return tracks, nil
}

// 曲库的 duration 有时是数字有时是字符串
func toInt(v any) int {
	switch d := v.(type) {
	case float64:
		return int(d)
	case string:
		n, _ := strconv.Atoi(d)
		return n
	default:
		return 0
	}
}
