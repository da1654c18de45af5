package model

// StoryRequest 故事生成请求
type StoryRequest struct {
	Name  string `json:"name" binding:"required"`  // 孩子的名字（或胎名）
	Theme string `json:"theme" binding:"required"` // 故事主题
}

// VoiceRequest 语音合成请求，speed 缺省为 1.0
type VoiceRequest struct {
	Text  string   `json:"text" binding:"required"`
	Voice string   `json:"voice" binding:"required,oneof=alloy echo fable onyx nova shimmer ash coral sage"`
	Speed *float64 `json:"speed" binding:"omitempty,gt=0"`
}

// SpeedOrDefault 返回请求的语速，未指定时为 1.0
func (r VoiceRequest) SpeedOrDefault() float64 {
	if r.Speed == nil {
		return 1.0
	}
	return *r.Speed
}

// VoiceResponse 语音合成响应（base64 传输）
type VoiceResponse struct {
	AudioBase64 string  `json:"audio_base64"`
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	Format      string  `json:"format"`
}

// TextRequest 只携带一段文本的请求：插画生成使用故事文本，线稿转换使用 URL 或本地路径
type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ThemeRequest 音乐 / 视频搜索请求
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// MusicTrack 音乐曲库中的一首曲目
type MusicTrack struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Duration      int    `json:"duration"`
	ArtistName    string `json:"artist_name"`
	Audio         string `json:"audio"`
	AudioDownload string `json:"audiodownload"`
	Image         string `json:"image"`
	ShareURL      string `json:"shareurl,omitempty"`
}

// VideoResult 视频平台搜索结果
type VideoResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// VideoCreateRequest 图片 + 音频合成视频请求
type VideoCreateRequest struct {
	ImageURL   string `json:"image_url" binding:"required"`
	AudioURL   string `json:"audio_url" binding:"required"`
	StoryTitle string `json:"story_title" binding:"required"`
}

// VideoCreateResponse 视频合成结果，失败时 success 为 false 并携带 error
type VideoCreateResponse struct {
	Success   bool    `json:"success"`
	VideoPath string  `json:"video_path,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Message   string  `json:"message"`
	Error     string  `json:"error,omitempty"`
}

// ThumbnailCreateRequest 缩略图提取请求，video_url 可以是 URL 或本地路径
type ThumbnailCreateRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// ThumbnailCreateResponse 缩略图提取结果
type ThumbnailCreateResponse struct {
	Success       bool   `json:"success"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	Message       string `json:"message"`
	Error         string `json:"error,omitempty"`
}

// AgentRequest 绘本助手请求
type AgentRequest struct {
	Input string `json:"input" binding:"required"`
}
