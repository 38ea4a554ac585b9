package domain

// FileSet 是一次扫描得到的 base name 索引（只做 ReadDir，不读文件内容）。
//
// 不变量：
// - key 为小写化后的 base name（去掉最后一个扩展名）
// - 每个 key 在 Primaries / Sidecars 中各自至多对应一个绝对路径
// - 同 key 重复出现时先到先得（ReadDir 按文件名排序），后来者记录在 Duplicates
type FileSet struct {
	Dir string

	Primaries map[string]string
	Sidecars  map[string]string

	// Duplicates 是因 base name 冲突而被忽略的文件绝对路径（保持遍历顺序）。
	Duplicates []string
	// Ignored 是既不是主文件也不是 sidecar 的条目数量（含目录与隐藏文件）。
	Ignored int
}

func NewFileSet(dir string) FileSet {
	return FileSet{
		Dir:       dir,
		Primaries: map[string]string{},
		Sidecars:  map[string]string{},
	}
}

// Candidate 是按 base name 配对后的工作单元：一个主文件 + 可选 sidecar。
type Candidate struct {
	Key     string
	Primary string
	Sidecar string // 为空表示没有 sidecar
}

func (c Candidate) HasSidecar() bool { return c.Sidecar != "" }
