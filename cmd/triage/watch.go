package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/config"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
	"github.com/John-Robertt/ImagingTriage/internal/infra/reportstore"
	"github.com/John-Robertt/ImagingTriage/internal/infra/watch"
	"github.com/John-Robertt/ImagingTriage/internal/scan"
)

func (c *cli) watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "监视 path，出现新的照片或 .xmp 时自动整理",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.loadEffective(cmd, pathArg(args), false)
			if err != nil {
				return failed(err)
			}
			b := c.bundle(eff.Language)
			logger := c.logger()

			w, err := watch.New(eff.Path, debounce, relevantFunc(eff.Extensions))
			if err != nil {
				return failed(fmt.Errorf("创建监视器失败：%w", err))
			}
			if err := w.Start(); err != nil {
				return failed(fmt.Errorf("监视 %s 失败：%w", eff.Path, err))
			}
			defer w.Stop()

			var extra run.Observer
			if c.verbose {
				extra = newLogObserver(logger)
			}
			logger.Print(b.Get("watch_started", "path", eff.Path))
			c.watchLoop(cmd.Context(), w.Triggers, run.NewRunner(c.guard, extra), eff, b)
			return nil
		},
	}
	addSortFlags(cmd)
	cmd.Flags().Bool("no-report", false, "不写入 <path>/.triage/report.json")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "最后一次文件变化后等待多久再整理")
	return cmd
}

// watchLoop 启动时先整理一次，之后每个触发都发起一次整理，直到 ctx 取消或触发通道关闭。
//
// 运行中到达的触发会被拒绝（warning_already_running），但会记下 rerun，
// 当前运行结束后立即补跑一次，避免扫描快照之后才出现的文件滞留。
func (c *cli) watchLoop(ctx context.Context, triggers <-chan watch.Trigger, runner *run.Runner, eff config.EffectiveConfig, b *i18n.Bundle) {
	logger := c.logger()
	opts := run.SortOptionsFrom(eff)

	busy, rerun := false, false
	start := func() {
		if err := runner.StartSort(ctx, opts); err != nil {
			if errors.Is(err, run.ErrAlreadyRunning) {
				logger.Print(b.Get("warning_already_running"))
				rerun = true
				return
			}
			logger.Print(err)
			return
		}
		busy = true
	}
	start()

	for {
		select {
		case <-ctx.Done():
			if busy {
				// ctx 已取消：当前运行会在下一个候选前停下。
				for ev := range runner.Events() {
					if ev.Kind == run.EventDone {
						c.emitReport(ev.Report, b)
						break
					}
				}
			}
			return

		case tr, ok := <-triggers:
			if !ok {
				return
			}
			if c.verbose {
				logger.Printf("%s：%d 个文件", b.Get("watch_triggered"), len(tr.Files))
			} else {
				logger.Print(b.Get("watch_triggered"))
			}
			start()

		case ev := <-runner.Events():
			if ev.Kind != run.EventDone {
				continue
			}
			busy = false
			if eff.WriteReport {
				if err := reportstore.New(eff.Path, false).Write(ev.Report); err != nil {
					logger.Printf("写入报告失败：%v", err)
				}
			}
			c.emitReport(ev.Report, b)
			if rerun && ctx.Err() == nil {
				rerun = false
				start()
			}
		}
	}
}

// relevantFunc 只对主文件与 sidecar 的出现做出反应；目录与隐藏文件（含 .triage/）被忽略。
func relevantFunc(exts config.Extensions) func(name string) bool {
	return func(name string) bool {
		return scan.Classify(name, exts) != scan.KindIgnored
	}
}
