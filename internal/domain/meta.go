package domain

// Metadata 是从 sidecar 中提取的两个可选属性。
//
// 约定：空串即“缺失”；没有 sidecar、没有 Description 记录、属性缺失三种情况
// 都得到零值 Metadata{}。
type Metadata struct {
	Rating string
	Label  string
}

func (m Metadata) IsZero() bool { return m.Rating == "" && m.Label == "" }

// Classification 是分类策略的结果。Rated=false 时 Folder 必为空。
type Classification struct {
	Rated  bool
	Folder string
}

// MissingFolder 是未评级文件的固定落点。
const MissingFolder = "RATING_MISSING"

const (
	RatingPrefix = "RATING_"
	LabelPrefix  = "LABEL_"
)
