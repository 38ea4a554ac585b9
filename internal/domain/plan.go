package domain

// MovePlan 规划一次文件移动（只描述 src/dst；执行阶段才真正 rename）。
type MovePlan struct {
	SrcAbs string
	DstAbs string
}

// Outcome 描述单个候选的规划结论。
type Outcome string

const (
	OutcomeRated     Outcome = "rated"
	OutcomeMissing   Outcome = "missing"
	OutcomeIgnored   Outcome = "ignored"   // 未评级且 inhibit_move_unrated=true
	OutcomeCollision Outcome = "collision" // 目标已存在同名文件
	OutcomeFailed    Outcome = "failed"
)

// Unclassified 记录未评级的原因（仅 Rated=false 时有意义）。
type Unclassified string

const (
	UnclassifiedNone       Unclassified = ""
	UnclassifiedNoSidecar  Unclassified = "no_sidecar"
	UnclassifiedNoMetadata Unclassified = "no_metadata"
)

// ItemPlan 是对某个候选（base name）的最小执行计划。
//
// Moves 的顺序固定：主文件在前，sidecar（若有）在后；执行失败时按倒序回滚。
type ItemPlan struct {
	Key     string
	Outcome Outcome
	Reason  Unclassified
	Folder  string // 目标子目录名（相对扫描根目录）；Ignored 时为空

	Moves []MovePlan

	// Errors 是规划阶段产生的诊断（例如 sidecar 解析失败、目标冲突）。
	Errors []string
}

// OutcomeGathered 表示 gather 时文件已（或在 dry-run 下将会）移回父目录。
const OutcomeGathered Outcome = "gathered"

// GatherFolder 是一个待归集的子目录（RATING_* / LABEL_*）。
type GatherFolder struct {
	Name string
	Abs  string

	// Files 是该目录内的非目录条目，按文件名排序；DstAbs 位于父目录。
	Files []MovePlan
	// Subdirs 是嵌套目录数量：gather 不处理它们，因此该目录不会被删除。
	Subdirs int
}

// GatherPlan 是 gather 的预扫描结果。
type GatherPlan struct {
	Root    string
	Folders []GatherFolder
	// Errors 是无法读取的子目录（已跳过）。
	Errors []string
}

// TotalFiles 返回所有匹配子目录中的文件总数（即进度的分母）。
func (p GatherPlan) TotalFiles() int {
	n := 0
	for i := range p.Folders {
		n += len(p.Folders[i].Files)
	}
	return n
}
