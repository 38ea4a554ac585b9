package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/scan"
)

// IsSortedFolder 判断目录名是否是 sort 产生的目录（按字面前缀匹配，大小写敏感）。
func IsSortedFolder(name string) bool {
	return strings.HasPrefix(name, domain.RatingPrefix) || strings.HasPrefix(name, domain.LabelPrefix)
}

// readDirFunc 可替换，便于测试模拟子目录读取失败。
var readDirFunc = os.ReadDir

// PlanGather 只读地枚举 root 的直接子目录，生成 gather 计划。
// root 不是目录时返回 *scan.DirectoryNotFoundError。
// 单个子目录读取失败只记入 plan.Errors 并跳过该目录，不影响其它目录。
func PlanGather(root string) (domain.GatherPlan, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return domain.GatherPlan{}, &scan.DirectoryNotFoundError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return domain.GatherPlan{}, &scan.DirectoryNotFoundError{Path: root}
	}

	ents, err := readDirFunc(root)
	if err != nil {
		return domain.GatherPlan{}, &scan.DirectoryNotFoundError{Path: root, Err: err}
	}

	plan := domain.GatherPlan{Root: root}
	for _, e := range ents {
		if !e.IsDir() || !IsSortedFolder(e.Name()) {
			continue
		}
		f, err := planFolder(root, e.Name())
		if err != nil {
			plan.Errors = append(plan.Errors, fmt.Sprintf("读取目录失败：%s：%v", e.Name(), err))
			continue
		}
		plan.Folders = append(plan.Folders, f)
	}
	sort.Slice(plan.Folders, func(i, j int) bool { return plan.Folders[i].Name < plan.Folders[j].Name })
	return plan, nil
}

func planFolder(root, name string) (domain.GatherFolder, error) {
	dir := filepath.Join(root, name)
	ents, err := readDirFunc(dir)
	if err != nil {
		return domain.GatherFolder{}, err
	}
	f := domain.GatherFolder{Name: name, Abs: dir}
	for _, e := range ents {
		if e.IsDir() {
			f.Subdirs++
			continue
		}
		f.Files = append(f.Files, domain.MovePlan{
			SrcAbs: filepath.Join(dir, e.Name()),
			DstAbs: filepath.Join(root, e.Name()),
		})
	}
	return f, nil
}
