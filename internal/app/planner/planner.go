package planner

import (
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/ImagingTriage/internal/classify"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/infra/fsx"
)

// Policy 是正向整理的策略输入。
type Policy struct {
	Root               string
	Mode               classify.Mode
	InhibitMoveUnrated bool
}

// existsFunc 可替换，便于测试模拟 Lstat 失败。
var existsFunc = fsx.Exists

// PlanSort 基于候选 + 元数据生成确定性的执行计划（不做任何写入/移动）。
//
// metaErr 非空表示 sidecar 读取/解析失败：记录诊断，并按“没有元数据”处理。
// 目标处已存在同名条目时 Outcome=collision，Moves 保留以便报告，但执行阶段必须跳过。
func PlanSort(pol Policy, c domain.Candidate, meta domain.Metadata, metaErr error) domain.ItemPlan {
	p := domain.ItemPlan{Key: c.Key}

	if metaErr != nil {
		p.Errors = append(p.Errors, fmt.Sprintf("处理 %s 出错：%v", filepath.Base(c.Sidecar), metaErr))
		meta = domain.Metadata{}
	}

	cl, err := classify.Classify(pol.Mode, meta)
	if err != nil {
		p.Outcome = domain.OutcomeFailed
		p.Errors = append(p.Errors, fmt.Sprintf("%s：%v", filepath.Base(c.Primary), err))
		return p
	}

	switch {
	case cl.Rated:
		p.Outcome = domain.OutcomeRated
		p.Folder = cl.Folder
	default:
		if c.HasSidecar() {
			p.Reason = domain.UnclassifiedNoMetadata
		} else {
			p.Reason = domain.UnclassifiedNoSidecar
		}
		if pol.InhibitMoveUnrated {
			p.Outcome = domain.OutcomeIgnored
			return p
		}
		p.Outcome = domain.OutcomeMissing
		p.Folder = domain.MissingFolder
	}

	p.Moves = Moves(pol.Root, p.Folder, c)

	for _, mv := range p.Moves {
		exists, err := existsFunc(mv.DstAbs)
		if err != nil {
			p.Outcome = domain.OutcomeFailed
			p.Errors = append(p.Errors, fmt.Sprintf("检查目标失败：%q：%v", mv.DstAbs, err))
			return p
		}
		if exists {
			p.Outcome = domain.OutcomeCollision
			p.Errors = append(p.Errors, (&fsx.CollisionError{Src: mv.SrcAbs, Dst: mv.DstAbs}).Error())
			return p
		}
	}
	return p
}

// Moves 生成候选到 <root>/<folder>/ 的移动列表：主文件在前，sidecar（若有）在后。
// 保留原文件名（含扩展名大小写）。
func Moves(root, folder string, c domain.Candidate) []domain.MovePlan {
	dir := filepath.Join(root, folder)
	moves := make([]domain.MovePlan, 0, 2)
	moves = append(moves, domain.MovePlan{
		SrcAbs: c.Primary,
		DstAbs: filepath.Join(dir, filepath.Base(c.Primary)),
	})
	if c.HasSidecar() {
		moves = append(moves, domain.MovePlan{
			SrcAbs: c.Sidecar,
			DstAbs: filepath.Join(dir, filepath.Base(c.Sidecar)),
		})
	}
	return moves
}
