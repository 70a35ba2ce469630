package service

import (
	"strconv"
	"strings"
)

// ── 报名数跨行修复 ──────────────────────────────────────────
//
// 表格抽取常把相邻行的报名数挤进同一个单元格（或拆到错位的列）。
// 这里按行序对原始单元格做两遍修复，把数值还原到各自的行：
//
//	第一遍：单 token 直接归本行；三 token 视为上/中/下三行的纵向
//	        粘连，中间归本行，首尾只填尚无值的邻行，从不覆盖。
//	第二遍：双 token 迭代处理（上限 5 轮，一轮无变化即停）：优先
//	        填上邻行，其次下邻行；两侧都已占用时仅保留第一个
//	        token，第二个 token 记入告警后丢弃。
//
// 两遍都在输入副本上推进，不回写原始单元格，行序保证可审计。
// 修复后仍无法转成数字的值视为缺失，绝不折算成 0。
// ─────────────────────────────────────────────────────────────

// DroppedTokenWarning 双 token 兜底分支丢弃第二个 token 的告警。
// Row 是修复阶段内部的行序号；Course/Group 由合并阶段回填，
// 供操作员对照上传的原始表格定位。
type DroppedTokenWarning struct {
	Row    int    `json:"row"`              // 触发行（修复阶段内部序号）
	Token  string `json:"token"`            // 被丢弃的 token
	Course string `json:"course,omitempty"` // 触发行课程名
	Group  string `json:"group,omitempty"`  // 触发行班组
}

// ReconcileCounts 按行序修复报名数单元格，返回每行一个数值（nil=缺失）
// 及兜底丢弃告警。输入不会被修改。
func ReconcileCounts(cells []string) ([]*int, []DroppedTokenWarning) {
	n := len(cells)
	cleaned := make([]string, n)
	var warnings []DroppedTokenWarning

	// ── 第一遍：单 token 与三 token ──
	for i := 0; i < n; i++ {
		parts := strings.Fields(cells[i])
		switch len(parts) {
		case 1:
			cleaned[i] = parts[0]
		case 3:
			cleaned[i] = parts[1]
			if i > 0 && cleaned[i-1] == "" {
				cleaned[i-1] = parts[0]
			}
			if i < n-1 && cleaned[i+1] == "" {
				cleaned[i+1] = parts[2]
			}
		}
	}

	// ── 第二遍：双 token，迭代推进 ──
	const maxRounds = 5
	for round := 0; round < maxRounds; round++ {
		changed := false
		for i := 0; i < n; i++ {
			parts := strings.Fields(cells[i])
			if len(parts) != 2 || cleaned[i] != "" {
				// 第一遍已定值的行（含被邻行填充的多 token 行）不再拆分
				continue
			}

			switch {
			case i > 0 && cleaned[i-1] == "":
				cleaned[i-1] = parts[0]
				cleaned[i] = parts[1]
				changed = true
			case i < n-1 && cleaned[i+1] == "":
				cleaned[i] = parts[0]
				cleaned[i+1] = parts[1]
				changed = true
			default:
				// 两侧邻行都已占用：保留 token1，丢弃 token2 并告警
				cleaned[i] = parts[0]
				warnings = append(warnings, DroppedTokenWarning{Row: i, Token: parts[1]})
			}
		}
		if !changed {
			break
		}
	}

	// ── 数值化：失败 → 缺失，不是 0 ──
	out := make([]*int, n)
	for i, v := range cleaned {
		if v == "" {
			continue
		}
		num, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[i] = &num
	}

	return out, warnings
}
