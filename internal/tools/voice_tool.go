package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
	"fairytale/internal/openaiapi"
)

// VoiceTool 朗读故事
type VoiceTool struct {
	narrator Narrator
}

// VoiceToolArgs 语音合成请求参数，speed 缺省为 1.0
type VoiceToolArgs struct {
	Text  string   `json:"text"`
	Voice string   `json:"voice"`
	Speed *float64 `json:"speed,omitempty"`
}

// VoiceToolResp 语音合成响应
type VoiceToolResp struct {
	AudioBase64 string  `json:"audio_base64"`
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	Format      string  `json:"format"`
}

// NewVoiceTool 创建语音合成工具实例
func NewVoiceTool(narrator Narrator) *VoiceTool {
	return &VoiceTool{narrator: narrator}
}

func (t *VoiceTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"text":  {Type: schema.String, Required: true, Desc: "要朗读的文本"},
		"voice": {Type: schema.String, Required: true, Desc: "音色", Enum: openaiapi.Voices},
		"speed": {Type: schema.Number, Required: false, Desc: "语速，大于0，缺省为1.0"},
	}
	return &schema.ToolInfo{
		Name:        "voice_generate",
		Desc:        "把故事合成为MP3朗读音频，以base64返回",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *VoiceTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args VoiceToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if args.Text == "" || !openaiapi.IsVoice(args.Voice) {
		return "", fmt.Errorf("%w: text and a known voice required", apperr.ErrValidation)
	}
	speed := 1.0
	if args.Speed != nil {
		speed = *args.Speed
	}
	if speed <= 0 {
		return "", fmt.Errorf("%w: speed must be positive", apperr.ErrValidation)
	}

	audio, err := t.narrator.Speech(ctx, args.Text, args.Voice, speed)
	if err != nil {
		return "", err
	}
	return marshal(VoiceToolResp{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Voice:       args.Voice,
		Speed:       speed,
		Format:      "mp3",
	})
}

var _ einotool.InvokableTool = (*VoiceTool)(nil)
