package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端上的进度输出（写到 stderr，不污染 stdout）。
//
// run 层只发事件；扫描阶段结束后才知道总数，此时创建进度条。
type progressUI struct {
	w io.Writer
	b *i18n.Bundle

	mu        sync.Mutex
	startedAt time.Time
	kind      string
	bar       *progressbar.ProgressBar
}

func newProgressUI(w io.Writer, b *i18n.Bundle) *progressUI {
	return &progressUI{w: w, b: b}
}

func (p *progressUI) OnStart(kind, path string, dryRun bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.kind = kind
	mode := "apply"
	if dryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(p.w, "[%s] triage %s (%s)\n", p.startedAt.Format("15:04:05"), kind, mode)
	fmt.Fprintf(p.w, "  path: %s\n", path)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		total := 0
		if p.kind == domain.KindGather {
			fmt.Fprintf(p.w, "扫描: folders=%d files=%d (%s)\n",
				intField(fields, "folders"), intField(fields, "files"), formatShortDuration(dur))
			total = intField(fields, "files")
		} else {
			fmt.Fprintf(p.w, "扫描: candidates=%d orphan_sidecars=%d duplicates=%d ignored=%d (%s)\n",
				intField(fields, "candidates"), intField(fields, "orphan_sidecars"),
				intField(fields, "duplicates"), intField(fields, "ignored"), formatShortDuration(dur))
			total = intField(fields, "candidates")
		}
		if total > 0 {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription(p.b.Get("status_processing", "current", 0, "total", total)),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
	case "exec":
		if p.bar != nil {
			_ = p.bar.Finish()
			p.bar = nil
		}
		fmt.Fprintf(p.w, "%s (%s)\n", p.b.Get("status_complete"), formatShortDuration(time.Since(p.startedAt)))
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemPlan, dur time.Duration) {}

func (p *progressUI) OnProgress(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.bar.Describe(p.b.Get("status_processing", "current", done, "total", total))
	_ = p.bar.Set(done)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func formatShortDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
