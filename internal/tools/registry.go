package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"fairytale/internal/apperr"
)

// Registry 按名字查找工具
type Registry struct {
	tools map[string]einotool.InvokableTool
	names []string
}

// NewRegistry 注册工具，名字取自各工具的 Info
func NewRegistry(ctx context.Context, tools ...einotool.InvokableTool) (*Registry, error) {
	r := &Registry{tools: make(map[string]einotool.InvokableTool, len(tools))}
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		if _, dup := r.tools[info.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", info.Name)
		}
		r.tools[info.Name] = t
		r.names = append(r.names, info.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Infos 按名字排序返回全部工具信息
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r.names))
	for _, name := range r.names {
		info, err := r.tools[name].Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Run 调用指定工具，未注册的名字返回 ErrNotFound
func (r *Registry) Run(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: tool %q", apperr.ErrNotFound, name)
	}
	return t.InvokableRun(ctx, argumentsInJSON)
}

// Select 按名字取出工具，供 agent 调用
func (r *Registry) Select(names ...string) ([]einotool.BaseTool, error) {
	out := make([]einotool.BaseTool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: tool %q", apperr.ErrNotFound, name)
		}
		out = append(out, t)
	}
	return out, nil
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
