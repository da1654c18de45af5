package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"fairytale/internal/apperr"
	"fairytale/internal/model"
	"fairytale/internal/tools"
)

// toolView 工具信息的 JSON 形式，参数以 JSON Schema 描述
type toolView struct {
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	Parameters any    `json:"parameters,omitempty"`
}

// handleToolList 列出可调用的工具
func handleToolList(registry *tools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos, err := registry.Infos(c.Request.Context())
		if err != nil {
			abort(c, http.StatusInternalServerError, "读取工具信息失败", err)
			return
		}
		views := make([]toolView, 0, len(infos))
		for _, info := range infos {
			v := toolView{Name: info.Name, Desc: info.Desc}
			if info.ParamsOneOf != nil {
				params, err := info.ParamsOneOf.ToJSONSchema()
				if err != nil {
					abort(c, http.StatusInternalServerError, "读取工具信息失败", err)
					return
				}
				v.Parameters = params
			}
			views = append(views, v)
		}
		c.JSON(http.StatusOK, gin.H{"tools": views})
	}
}

// handleToolRun 直接以请求体作为JSON参数调用工具
func handleToolRun(registry *tools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil || !json.Valid(body) {
			abort(c, http.StatusBadRequest, "无效的请求格式", err)
			return
		}

		result, err := registry.Run(c.Request.Context(), c.Param("name"), string(body))
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "工具调用失败", err)
			return
		}
		c.Data(http.StatusOK, "application/json", []byte(result))
	}
}

// handleStorybook 绘本助手：一次请求内完成故事与插画
func handleStorybook(assistant Assistant) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.AgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}

		res, err := assistant.Run(c.Request.Context(), req.Input)
		if err != nil {
			abort(c, apperr.Status(err, http.StatusBadGateway), "绘本助手执行失败", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
