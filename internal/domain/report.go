package domain

import (
	"encoding/json"
	"time"
)

const (
	KindSort   = "sort"
	KindGather = "gather"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
// Sort 与 Gather 二者恰有一个非空，由 Kind 决定。
type RunReport struct {
	RunID  string `json:"run_id"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Sort   *RunStats    `json:"sort,omitempty"`
	Gather *GatherStats `json:"gather,omitempty"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) nil 切片/map 归一为空值，避免 JSON 里出现 null
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Sort != nil {
		if r.Sort.FolderDistribution == nil {
			r.Sort.FolderDistribution = map[string]int{}
		}
		if r.Sort.Errors == nil {
			r.Sort.Errors = []string{}
		}
	}
	if r.Gather != nil {
		if r.Gather.Conflicts == nil {
			r.Gather.Conflicts = []string{}
		}
		if r.Gather.Errors == nil {
			r.Gather.Errors = []string{}
		}
	}
}

// Failed 表示该次运行是否存在需要用户关注的问题（决定 CLI 退出码）。
func (r RunReport) Failed() bool {
	if r.Sort != nil && (len(r.Sort.Errors) > 0 || r.Sort.Canceled) {
		return true
	}
	if r.Gather != nil && (len(r.Gather.Errors) > 0 || len(r.Gather.Conflicts) > 0 || r.Gather.Canceled) {
		return true
	}
	return false
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为；map 的 key 由 encoding/json 排序输出。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
