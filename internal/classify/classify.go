// Package classify 根据 sidecar 元数据决定文件是否“已评级”以及目标子目录名。
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

// Mode 是分类策略。
type Mode string

const (
	// ModeRating：有非空 rating 即视为已评级，目录为 RATING_{rating}（"0" 也算）。
	ModeRating Mode = "rating"
	// ModeRatingLabel：rating 非空且不为 "0"，或 label 非空且不等于 "none"（忽略大小写）。
	ModeRatingLabel Mode = "rating_label"

	DefaultMode = ModeRatingLabel
)

// ErrUnsafeFolderName 表示属性值无法作为单一目录名使用（含路径分隔符或 NUL）。
var ErrUnsafeFolderName = errors.New("属性值不能作为目录名")

// ParseMode 校验并解析模式字符串；空串返回默认模式。
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeRating:
		return ModeRating, nil
	case ModeRatingLabel:
		return ModeRatingLabel, nil
	default:
		return "", fmt.Errorf("mode 只能是 %s 或 %s，实际是 %q", ModeRating, ModeRatingLabel, s)
	}
}

// Classify 计算分类结果。目录名由“有意义”的属性值按固定顺序拼接：
// RATING_{rating} 在前，LABEL_{label} 在后，二者都有时以单个 '-' 连接。
//
// 只有原始字符串存在而没有有意义的值时（例如 rating="0" 且 label="None"），结果为未评级。
func Classify(mode Mode, m domain.Metadata) (domain.Classification, error) {
	var parts []string

	switch mode {
	case ModeRating:
		if m.Rating != "" {
			parts = append(parts, domain.RatingPrefix+m.Rating)
		}
	default:
		if meaningfulRating(m.Rating) {
			parts = append(parts, domain.RatingPrefix+m.Rating)
		}
		if meaningfulLabel(m.Label) {
			parts = append(parts, domain.LabelPrefix+m.Label)
		}
	}

	if len(parts) == 0 {
		return domain.Classification{}, nil
	}

	folder := strings.Join(parts, "-")
	if !safeFolderName(folder) {
		return domain.Classification{}, fmt.Errorf("%w：%q", ErrUnsafeFolderName, folder)
	}
	return domain.Classification{Rated: true, Folder: folder}, nil
}

func meaningfulRating(v string) bool { return v != "" && v != "0" }

func meaningfulLabel(v string) bool { return v != "" && !strings.EqualFold(v, "none") }

func safeFolderName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
