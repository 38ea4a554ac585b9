package run

import (
	"time"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件在执行 Sort/Gather 的 goroutine 上同步调用；需要跨 goroutine 投递时使用 ChanObserver。
type Observer interface {
	// OnStart 在 Sort/Gather 开始时调用。
	OnStart(kind, path string, dryRun bool)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在一个候选（sort）或一个文件（gather）处理完成时调用。
	OnItemDone(idx, total int, res domain.ItemPlan, dur time.Duration)
	// OnProgress 上报 (completed, total)；completed 单调不减。
	OnProgress(done, total int)
}

// ProgressFunc 把普通的 (completed, total) 回调适配为 Observer。
type ProgressFunc func(done, total int)

func (f ProgressFunc) OnStart(string, string, bool)                        {}
func (f ProgressFunc) OnPhaseDone(string, map[string]any, time.Duration)   {}
func (f ProgressFunc) OnItemDone(int, int, domain.ItemPlan, time.Duration) {}

func (f ProgressFunc) OnProgress(done, total int) {
	if f != nil {
		f(done, total)
	}
}

// Multi 把多个 Observer 合并为一个（nil 会被跳过）。
func Multi(obs ...Observer) Observer {
	out := make(multi, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multi []Observer

func (m multi) OnStart(kind, path string, dryRun bool) {
	for _, o := range m {
		o.OnStart(kind, path, dryRun)
	}
}

func (m multi) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	for _, o := range m {
		o.OnPhaseDone(name, fields, dur)
	}
}

func (m multi) OnItemDone(idx, total int, res domain.ItemPlan, dur time.Duration) {
	for _, o := range m {
		o.OnItemDone(idx, total, res, dur)
	}
}

func (m multi) OnProgress(done, total int) {
	for _, o := range m {
		o.OnProgress(done, total)
	}
}

type nopObserver struct{}

func (nopObserver) OnStart(string, string, bool)                        {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration)   {}
func (nopObserver) OnItemDone(int, int, domain.ItemPlan, time.Duration) {}
func (nopObserver) OnProgress(int, int)                                 {}
