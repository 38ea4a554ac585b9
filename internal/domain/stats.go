package domain

import "sort"

// RunStats 是一次正向整理（sort）的统计结果。
//
// 生命周期：由 run.Sort 在一次运行内独占创建并填充，完成后按值交给调用方，此后只读。
type RunStats struct {
	TotalCandidates        int `json:"total_candidates"`
	ProcessedCount         int `json:"processed_count"`
	MovedToMissing         int `json:"moved_to_missing"`
	IntentionallyIgnored   int `json:"intentionally_ignored"`
	UnclassifiedNoSidecar  int `json:"unclassified_no_sidecar"`
	UnclassifiedNoMetadata int `json:"unclassified_no_metadata"`
	Collisions             int `json:"collisions"`
	DuplicatesSkipped      int `json:"duplicates_skipped"`

	FolderDistribution map[string]int `json:"folder_distribution"`

	// Errors 只追加，顺序即遇到的顺序。
	Errors   []string `json:"errors"`
	Canceled bool     `json:"canceled"`
}

func NewRunStats() RunStats {
	return RunStats{
		FolderDistribution: map[string]int{},
		Errors:             []string{},
	}
}

// FolderCount 是目录分布中的一行。
type FolderCount struct {
	Folder string `json:"folder"`
	Count  int    `json:"count"`
}

// SortedDistribution 按目录名字典序输出分布（渲染层只应使用该顺序）。
func (s RunStats) SortedDistribution() []FolderCount {
	out := make([]FolderCount, 0, len(s.FolderDistribution))
	for k, v := range s.FolderDistribution {
		out = append(out, FolderCount{Folder: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out
}

// GatherStats 是反向归集（gather）的统计结果。
type GatherStats struct {
	MovedCount     int `json:"moved_count"`
	DeletedFolders int `json:"deleted_folders"`

	// Conflicts 是因父目录已存在同名文件而留在子目录中的文件名。
	Conflicts []string `json:"conflicts"`
	// Errors 是冲突以外的失败（权限、跨盘等）。
	Errors   []string `json:"errors"`
	Canceled bool     `json:"canceled"`
}

func NewGatherStats() GatherStats {
	return GatherStats{
		Conflicts: []string{},
		Errors:    []string{},
	}
}
