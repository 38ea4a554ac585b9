package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/ImagingTriage/internal/app"
	"github.com/John-Robertt/ImagingTriage/internal/app/planner"
	"github.com/John-Robertt/ImagingTriage/internal/classify"
	"github.com/John-Robertt/ImagingTriage/internal/config"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/infra/fsx"
	"github.com/John-Robertt/ImagingTriage/internal/scan"
	"github.com/John-Robertt/ImagingTriage/internal/xmp"
)

// SortOptions 是一次正向整理的全部输入（不读取任何全局状态）。
type SortOptions struct {
	Path               string
	Extensions         config.Extensions
	Mode               classify.Mode
	InhibitMoveUnrated bool
	DryRun             bool
}

// GatherOptions 是一次反向归集的全部输入。
type GatherOptions struct {
	Path   string
	DryRun bool
}

// SortOptionsFrom 从 EffectiveConfig 构造 SortOptions。
func SortOptionsFrom(eff config.EffectiveConfig) SortOptions {
	return SortOptions{
		Path:               eff.Path,
		Extensions:         eff.Extensions,
		Mode:               eff.Mode,
		InhibitMoveUnrated: eff.InhibitMoveUnrated,
		DryRun:             eff.DryRun,
	}
}

// Sort 按 sidecar 的评级/标签把主文件及其 sidecar 移入子目录。
//
// 单个候选的失败只记录到 Errors，不中断运行；只有目录本身不可用时提前返回
// （此时所有计数为 0，Errors 恰有一条）。ctx 只在候选之间检查。
func Sort(ctx context.Context, opts SortOptions, obs Observer) domain.RunStats {
	if ctx == nil {
		ctx = context.Background()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if opts.Mode == "" {
		opts.Mode = classify.DefaultMode
	}

	stats := domain.NewRunStats()
	obs.OnStart(domain.KindSort, opts.Path, opts.DryRun)

	scanStarted := time.Now()
	fs, err := scan.ScanDir(opts.Path, opts.Extensions)
	if err != nil {
		stats.Errors = append(stats.Errors, err.Error())
		return stats
	}
	for _, d := range fs.Duplicates {
		stats.DuplicatesSkipped++
		stats.Errors = append(stats.Errors, fmt.Sprintf("base name 重复，已跳过：%s", filepath.Base(d)))
	}
	cands := app.PairCandidates(fs)
	stats.TotalCandidates = len(cands)

	obs.OnPhaseDone("scan", map[string]any{
		"candidates":      len(cands),
		"orphan_sidecars": len(app.OrphanSidecars(fs)),
		"duplicates":      len(fs.Duplicates),
		"ignored":         fs.Ignored,
	}, time.Since(scanStarted))

	pol := planner.Policy{
		Root:               opts.Path,
		Mode:               opts.Mode,
		InhibitMoveUnrated: opts.InhibitMoveUnrated,
	}

	execStarted := time.Now()
	for i, c := range cands {
		if ctx.Err() != nil {
			stats.Canceled = true
			break
		}
		oneStarted := time.Now()

		meta, metaErr := readMeta(c)
		p := planner.PlanSort(pol, c, meta, metaErr)
		if !opts.DryRun {
			p = execSort(p)
		}
		record(&stats, p)

		obs.OnItemDone(i+1, len(cands), p, time.Since(oneStarted))
		obs.OnProgress(i+1, len(cands))
	}

	obs.OnPhaseDone("exec", map[string]any{
		"processed":  stats.ProcessedCount,
		"missing":    stats.MovedToMissing,
		"ignored":    stats.IntentionallyIgnored,
		"collisions": stats.Collisions,
		"errors":     len(stats.Errors),
	}, time.Since(execStarted))
	return stats
}

func readMeta(c domain.Candidate) (domain.Metadata, error) {
	if !c.HasSidecar() {
		return domain.Metadata{}, nil
	}
	return xmp.Read(c.Sidecar)
}

// execSort 执行计划中的移动。只有 rated/missing 会产生移动。
// 中途失败 => 倒序回滚已移动文件，保证一对文件不会被拆散。
func execSort(p domain.ItemPlan) domain.ItemPlan {
	if p.Outcome != domain.OutcomeRated && p.Outcome != domain.OutcomeMissing {
		return p
	}
	if len(p.Moves) == 0 {
		return p
	}

	dir := filepath.Dir(p.Moves[0].DstAbs)
	if err := fsx.EnsureDir(dir); err != nil {
		p.Outcome = domain.OutcomeFailed
		p.Errors = append(p.Errors, fmt.Sprintf("创建目录失败：%q：%v", dir, err))
		return p
	}

	moved := make([]domain.MovePlan, 0, len(p.Moves))
	for _, mv := range p.Moves {
		if err := fsx.MoveNoReplace(mv.SrcAbs, mv.DstAbs); err != nil {
			if fsx.IsCollision(err) {
				p.Outcome = domain.OutcomeCollision
			} else {
				p.Outcome = domain.OutcomeFailed
			}
			p.Errors = append(p.Errors, fmt.Sprintf("移动失败：%s：%v", filepath.Base(mv.SrcAbs), err))
			p.Errors = append(p.Errors, rollbackMoves(moved)...)
			return p
		}
		moved = append(moved, mv)
	}
	return p
}

func rollbackMoves(moved []domain.MovePlan) []string {
	var errs []string
	// 回滚顺序：倒序（更符合栈语义）。
	for i := len(moved) - 1; i >= 0; i-- {
		mv := moved[i]
		if err := fsx.Rename(mv.DstAbs, mv.SrcAbs); err != nil {
			errs = append(errs, fmt.Sprintf("回滚失败：%s 仍位于 %q：%v", filepath.Base(mv.SrcAbs), mv.DstAbs, err))
		}
	}
	return errs
}

func record(stats *domain.RunStats, p domain.ItemPlan) {
	stats.Errors = append(stats.Errors, p.Errors...)

	switch p.Reason {
	case domain.UnclassifiedNoSidecar:
		stats.UnclassifiedNoSidecar++
	case domain.UnclassifiedNoMetadata:
		stats.UnclassifiedNoMetadata++
	}

	switch p.Outcome {
	case domain.OutcomeRated:
		stats.ProcessedCount++
		stats.FolderDistribution[p.Folder]++
	case domain.OutcomeMissing:
		stats.MovedToMissing++
	case domain.OutcomeIgnored:
		stats.IntentionallyIgnored++
	case domain.OutcomeCollision:
		stats.Collisions++
	}
}

// planGatherFunc 可替换，便于测试模拟预扫描中的子目录读取失败。
var planGatherFunc = planner.PlanGather

// Gather 把 RATING_* / LABEL_* 子目录中的文件移回父目录，并删除变空的子目录。
//
// 父目录已存在同名文件时该文件留在原处，文件名记入 Conflicts。
// 进度 (已移动, 文件总数) 只在成功移动后上报，总数来自移动前的预扫描。
func Gather(ctx context.Context, opts GatherOptions, obs Observer) domain.GatherStats {
	if ctx == nil {
		ctx = context.Background()
	}
	if obs == nil {
		obs = nopObserver{}
	}

	stats := domain.NewGatherStats()
	obs.OnStart(domain.KindGather, opts.Path, opts.DryRun)

	planStarted := time.Now()
	plan, err := planGatherFunc(opts.Path)
	if err != nil {
		stats.Errors = append(stats.Errors, err.Error())
		return stats
	}
	stats.Errors = append(stats.Errors, plan.Errors...)
	total := plan.TotalFiles()
	obs.OnPhaseDone("scan", map[string]any{
		"folders": len(plan.Folders),
		"files":   total,
	}, time.Since(planStarted))

	// dry-run 下模拟“已移回父目录”的文件，用于发现多个子目录中的同名文件。
	claimed := map[string]bool{}

	execStarted := time.Now()
	idx := 0
	for _, f := range plan.Folders {
		left := f.Subdirs
		for _, mv := range f.Files {
			if ctx.Err() != nil {
				stats.Canceled = true
				break
			}
			idx++
			oneStarted := time.Now()
			res := domain.ItemPlan{Key: filepath.Base(mv.SrcAbs), Folder: f.Name, Moves: []domain.MovePlan{mv}}

			err := gatherOne(mv, opts.DryRun, claimed)
			switch {
			case err == nil:
				res.Outcome = domain.OutcomeGathered
				stats.MovedCount++
			case fsx.IsCollision(err):
				res.Outcome = domain.OutcomeCollision
				stats.Conflicts = append(stats.Conflicts, res.Key)
				left++
			default:
				res.Outcome = domain.OutcomeFailed
				msg := fmt.Sprintf("移动失败：%s/%s：%v", f.Name, res.Key, err)
				res.Errors = append(res.Errors, msg)
				stats.Errors = append(stats.Errors, msg)
				left++
			}

			obs.OnItemDone(idx, total, res, time.Since(oneStarted))
			if err == nil {
				obs.OnProgress(stats.MovedCount, total)
			}
		}
		if stats.Canceled {
			break
		}

		if left > 0 {
			continue
		}
		if opts.DryRun {
			stats.DeletedFolders++
			continue
		}
		if err := removeIfEmpty(f.Abs); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("删除目录失败：%s：%v", f.Name, err))
			continue
		}
		stats.DeletedFolders++
	}

	obs.OnPhaseDone("exec", map[string]any{
		"moved":     stats.MovedCount,
		"deleted":   stats.DeletedFolders,
		"conflicts": len(stats.Conflicts),
		"errors":    len(stats.Errors),
	}, time.Since(execStarted))
	return stats
}

func gatherOne(mv domain.MovePlan, dryRun bool, claimed map[string]bool) error {
	if !dryRun {
		return fsx.MoveNoReplace(mv.SrcAbs, mv.DstAbs)
	}
	exists, err := fsx.Exists(mv.DstAbs)
	if err != nil {
		return err
	}
	if exists || claimed[mv.DstAbs] {
		return &fsx.CollisionError{Src: mv.SrcAbs, Dst: mv.DstAbs}
	}
	claimed[mv.DstAbs] = true
	return nil
}

// removeIfEmpty 只删除空目录；目录在此期间被写入新文件时 os.Remove 会失败，不会误删内容。
func removeIfEmpty(dir string) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(ents) > 0 {
		return fmt.Errorf("目录非空（%d 个条目）", len(ents))
	}
	return os.Remove(dir)
}

// SortReport 执行 Sort 并包装为带 run_id 与起止时间的 RunReport。
func SortReport(ctx context.Context, opts SortOptions, obs Observer) domain.RunReport {
	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Kind:      domain.KindSort,
		Path:      opts.Path,
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	st := Sort(ctx, opts, obs)
	rr.Sort = &st
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// GatherReport 执行 Gather 并包装为 RunReport。
func GatherReport(ctx context.Context, opts GatherOptions, obs Observer) domain.RunReport {
	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Kind:      domain.KindGather,
		Path:      opts.Path,
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	st := Gather(ctx, opts, obs)
	rr.Gather = &st
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}
