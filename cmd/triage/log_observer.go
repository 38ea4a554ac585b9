package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

var _ run.Observer = logObserver{}

// logObserver 在 -v 时把阶段与逐条结果写到 stderr。
type logObserver struct {
	l *log.Logger
}

func newLogObserver(l *log.Logger) logObserver { return logObserver{l: l} }

func (o logObserver) OnStart(kind, path string, dryRun bool) {
	o.l.Printf("开始 %s：path=%s dry_run=%t", kind, path, dryRun)
}

func (o logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.l.Printf("阶段 %s：%v (%s)", name, fields, formatShortDuration(dur))
}

func (o logObserver) OnItemDone(idx, total int, res domain.ItemPlan, dur time.Duration) {
	dst := res.Folder
	if res.Outcome == domain.OutcomeGathered {
		dst = ".."
	}
	o.l.Printf("[%d/%d] %s %s -> %s", idx, total, res.Outcome, itemName(res), dst)
	for _, e := range res.Errors {
		o.l.Printf("  %s", e)
	}
}

func (o logObserver) OnProgress(done, total int) {}

func itemName(res domain.ItemPlan) string {
	if len(res.Moves) > 0 {
		return filepath.Base(res.Moves[0].SrcAbs)
	}
	return res.Key
}
