package dto

// ImportGridRequest 参照表导入请求。rows 是抽取器输出的
// 行×列字符串网格，含表头行。
type ImportGridRequest struct {
	Rows [][]string `json:"rows" binding:"required,min=1"`
}

// ImportResponse 参照表导入结果
type ImportResponse struct {
	Imported int `json:"imported"` // 解析成功并入库的行数
	Skipped  int `json:"skipped"`  // 解析失败被跳过的行数
}
