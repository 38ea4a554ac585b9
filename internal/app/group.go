package app

import (
	"sort"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

// PairCandidates 把 FileSet 按 base name 配对为候选列表。
//
// - 每个主文件恰好产生一个候选；没有主文件的 sidecar 不产生候选（原地保留）
// - 候选按 key 字典序稳定排序，保证多次运行结果一致
func PairCandidates(fs domain.FileSet) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(fs.Primaries))
	for key, primary := range fs.Primaries {
		out = append(out, domain.Candidate{
			Key:     key,
			Primary: primary,
			Sidecar: fs.Sidecars[key],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// OrphanSidecars 返回没有对应主文件的 sidecar（已排序），供报告/诊断使用。
func OrphanSidecars(fs domain.FileSet) []string {
	out := make([]string, 0)
	for key, p := range fs.Sidecars {
		if _, ok := fs.Primaries[key]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
