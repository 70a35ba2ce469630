package dto

// GenerateRequest 考表生成请求。三类网格均由上游 PDF 抽取器
// 产出，服务端不做表格抽取。
type GenerateRequest struct {
	RegistrarTables [][][]string `json:"registrar_tables" binding:"required,min=1"`
	DateGrid        [][]string   `json:"date_grid" binding:"required,min=2"`
	Title           string       `json:"title" binding:"max=200"`
}
