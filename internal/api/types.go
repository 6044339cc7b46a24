package api

import (
	"been-map/internal/identity"
	"been-map/internal/surface"
	"been-map/internal/visited"
)

// 文档注释：事件请求（对外）
// 背景：一次请求可携带多条事件，按顺序在同一会话锁内执行，保证同一会话的事件不交错。
// 约束：整批先校验再执行；任一事件类型未知或缺少字段时整批拒绝（400），不做部分执行。
type eventsRequest struct {
	Events []surface.Event `json:"events"`
}

// intentResult：一条 toggleVisited 意图的执行结果
type intentResult struct {
	Code    identity.Code   `json:"code"`
	Outcome visited.Outcome `json:"outcome"`
	Error   string          `json:"error,omitempty"`
}

type eventsResponse struct {
	Frame   surface.Frame  `json:"frame"`
	Intents []intentResult `json:"intents"`
}

type sessionResponse struct {
	ID    string        `json:"id"`
	Frame surface.Frame `json:"frame"`
}

// atlasFeature：图集概览中的单个要素（不含几何）
type atlasFeature struct {
	Index      int           `json:"index"`
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name"`
	Code       identity.Code `json:"code,omitempty"`
	Resolvable bool          `json:"resolvable"`
}

type atlasResponse struct {
	Status   surface.Status `json:"status"`
	Error    string         `json:"error,omitempty"`
	Strategy string         `json:"strategy,omitempty"`
	Resolved int            `json:"resolved"`
	Features []atlasFeature `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
}
