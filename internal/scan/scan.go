package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/ImagingTriage/internal/config"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

// SidecarExt 是 sidecar 的扩展名（比较时忽略大小写）。
const SidecarExt = ".xmp"

// DirectoryNotFoundError 表示待处理路径不存在或不是目录。该错误终止整次运行。
type DirectoryNotFoundError struct {
	Path string
	Err  error
}

func (e *DirectoryNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("目录不存在或不可读：%q：%v", e.Path, e.Err)
	}
	return fmt.Sprintf("不是目录：%q", e.Path)
}

func (e *DirectoryNotFoundError) Unwrap() error { return e.Err }

// Kind 是单个目录条目的分类。
type Kind int

const (
	KindIgnored Kind = iota
	KindPrimary
	KindSidecar
)

// Classify 按文件名对条目分类：扩展名命中 exts 为主文件，.xmp 为 sidecar，其余忽略。
// 隐藏文件（以 '.' 开头，例如 macOS 的 ._A.arw）一律忽略。
func Classify(name string, exts config.Extensions) Kind {
	if strings.HasPrefix(name, ".") {
		return KindIgnored
	}
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return KindIgnored
	}
	if strings.EqualFold(ext, SidecarExt) {
		return KindSidecar
	}
	if exts.Has(ext) {
		return KindPrimary
	}
	return KindIgnored
}

// BaseKey 返回 base name 的规范化形式（去掉最后一个扩展名后小写）。
func BaseKey(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
}

// ScanDir 只列一次 dir 的直接子条目，并建立 base name 索引。
//
// 规则（硬约束）：
// - 只看直接子条目，不递归；子目录一律忽略（包括已整理出的 RATING_*/LABEL_*）
// - 扫描阶段只做 ReadDir，不读文件内容
// - 同 key 重复：先到先得（ReadDir 按文件名排序，结果稳定），后来者记入 Duplicates
func ScanDir(dir string, exts config.Extensions) (domain.FileSet, error) {
	dir = filepath.Clean(dir)

	fi, err := os.Stat(dir)
	if err != nil {
		return domain.FileSet{}, &DirectoryNotFoundError{Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return domain.FileSet{}, &DirectoryNotFoundError{Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.FileSet{}, &DirectoryNotFoundError{Path: dir, Err: err}
	}

	fs := domain.NewFileSet(dir)
	for _, e := range entries {
		if e.IsDir() {
			fs.Ignored++
			continue
		}

		name := e.Name()
		abs := filepath.Join(dir, name)
		key := BaseKey(name)

		switch Classify(name, exts) {
		case KindPrimary:
			if _, dup := fs.Primaries[key]; dup {
				fs.Duplicates = append(fs.Duplicates, abs)
				continue
			}
			fs.Primaries[key] = abs
		case KindSidecar:
			if _, dup := fs.Sidecars[key]; dup {
				fs.Duplicates = append(fs.Duplicates, abs)
				continue
			}
			fs.Sidecars[key] = abs
		default:
			fs.Ignored++
		}
	}
	return fs, nil
}
