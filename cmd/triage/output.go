package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
)

// emitReport 输出一次运行的报告。
//
// stdout 是 TTY：输出本地化文本报告。
// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
func (c *cli) emitReport(rr domain.RunReport, b *i18n.Bundle) {
	if isTTY(c.stdout) {
		fmt.Fprint(c.stdout, renderReport(newStyles(c.stdout), b, rr))
		return
	}
	enc := json.NewEncoder(c.stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(c.stderr, summaryLine(rr))
}

// summaryLine 是非交互模式下写到 stderr 的一行摘要（固定英文键，便于 grep）。
func summaryLine(rr domain.RunReport) string {
	switch {
	case rr.Sort != nil:
		s := rr.Sort
		return fmt.Sprintf("kind=sort processed=%d missing=%d ignored=%d collisions=%d errors=%d",
			s.ProcessedCount, s.MovedToMissing, s.IntentionallyIgnored, s.Collisions, len(s.Errors))
	case rr.Gather != nil:
		g := rr.Gather
		return fmt.Sprintf("kind=gather moved=%d deleted_folders=%d conflicts=%d errors=%d",
			g.MovedCount, g.DeletedFolders, len(g.Conflicts), len(g.Errors))
	default:
		return "kind=" + rr.Kind
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// observer 组装本次运行的 Observer：交互 stderr 上显示进度条；-v 时输出逐条日志。
func (c *cli) observer(b *i18n.Bundle) run.Observer {
	var obs []run.Observer
	if isTTY(c.stderr) && !c.verbose {
		obs = append(obs, newProgressUI(c.stderr, b))
	}
	if c.verbose {
		obs = append(obs, newLogObserver(c.logger()))
	}
	return run.Multi(obs...)
}
