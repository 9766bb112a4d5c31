package api

// 文档注释：错误返回结构（对外）
// 约束：所有非 2xx 响应统一为 {"detail": "..."}，文本面向最终用户。
type errorBody struct {
	Detail string `json:"detail"`
}

type rootBody struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type statusBody struct {
	Status string `json:"status"`
}

// 文档注释：统计返回结构
// 约束：today_* 为数据库当前日期（current_date）的计数。
type statsBody struct {
	Uploads       int64 `json:"uploads"`
	Features      int64 `json:"features"`
	TodayUploads  int64 `json:"today_uploads"`
	TodayFeatures int64 `json:"today_features"`
}
