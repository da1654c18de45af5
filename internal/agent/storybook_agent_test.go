package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// scriptedModel 依次返回预设的回复
type scriptedModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	calls   int
	tools   []*schema.ToolInfo
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls >= len(m.replies) {
		return nil, errors.New("no more replies")
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.tools = tools
	return m, nil
}

type echoStoryTool struct{ args string }

func (t *echoStoryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "story_generate",
		Desc: "write a story",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"name":  {Type: schema.String, Required: true},
			"theme": {Type: schema.String, Required: true},
		}),
	}, nil
}

func (t *echoStoryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	t.args = argumentsInJSON
	return `{"story":"Once upon a time, Luna..."}`, nil
}

func TestStorybookCallsTools(t *testing.T) {
	story := &echoStoryTool{}
	cm := &scriptedModel{replies: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: schema.FunctionCall{
				Name:      "story_generate",
				Arguments: `{"name":"Luna","theme":"courage"}`,
			},
		}}),
		schema.AssistantMessage("Luna's bedtime story is ready.", nil),
	}}

	sb, err := NewStorybook(context.Background(), cm, []einotool.BaseTool{story}, quietLogger())
	if err != nil {
		t.Fatalf("NewStorybook: %v", err)
	}

	res, err := sb.Run(context.Background(), "a story about courage for Luna")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Output != "Luna's bedtime story is ready." {
		t.Errorf("output = %q", res.Output)
	}
	if len(res.ToolsUsed) != 1 || res.ToolsUsed[0] != "story_generate" {
		t.Errorf("tools used = %v", res.ToolsUsed)
	}
	if story.args != `{"name":"Luna","theme":"courage"}` {
		t.Errorf("tool args = %q", story.args)
	}
	if cm.calls != 2 {
		t.Errorf("model called %d times, want 2", cm.calls)
	}
}

func TestStorybookModelError(t *testing.T) {
	sb, err := NewStorybook(context.Background(), &scriptedModel{}, []einotool.BaseTool{&echoStoryTool{}}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sb.Run(context.Background(), "hello"); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestStorybookEmptyInput(t *testing.T) {
	sb, err := NewStorybook(context.Background(), &scriptedModel{}, []einotool.BaseTool{&echoStoryTool{}}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sb.Run(context.Background(), "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
