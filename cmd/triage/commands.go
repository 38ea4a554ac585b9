package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/ImagingTriage/internal/app/run"
	"github.com/John-Robertt/ImagingTriage/internal/classify"
	"github.com/John-Robertt/ImagingTriage/internal/config"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
	"github.com/John-Robertt/ImagingTriage/internal/infra/reportstore"
)

func addSortFlags(cmd *cobra.Command) {
	cmd.Flags().String("extensions", config.DefaultExtensions, "主文件扩展名（逗号分隔，忽略大小写与前导点）")
	cmd.Flags().String("mode", string(classify.DefaultMode), "分类模式：rating|rating_label")
	cmd.Flags().Bool("inhibit-unrated", false, "未评级的文件留在原处（不移入 RATING_MISSING）")
}

func (c *cli) sortCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sort [path]",
		Short: "按评级/标签把照片移入子目录",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.loadEffective(cmd, pathArg(args), dryRun)
			if err != nil {
				return failed(err)
			}
			b := c.bundle(eff.Language)

			release, err := c.guard.TryAcquire()
			if err != nil {
				return failed(errors.New(b.Get("warning_already_running")))
			}
			defer release()

			rr := run.SortReport(cmd.Context(), run.SortOptionsFrom(eff), c.observer(b))
			return c.finish(rr, eff, b)
		},
	}
	addSortFlags(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只计算结果，不移动任何文件")
	cmd.Flags().Bool("no-report", false, "不写入 <path>/.triage/report.json")
	return cmd
}

func (c *cli) gatherCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "gather [path]",
		Short: "把 RATING_* / LABEL_* 子目录中的文件移回 path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.loadEffective(cmd, pathArg(args), dryRun)
			if err != nil {
				return failed(err)
			}
			b := c.bundle(eff.Language)

			release, err := c.guard.TryAcquire()
			if err != nil {
				return failed(errors.New(b.Get("warning_already_running")))
			}
			defer release()

			rr := run.GatherReport(cmd.Context(), run.GatherOptions{Path: eff.Path, DryRun: eff.DryRun}, c.observer(b))
			return c.finish(rr, eff, b)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只计算结果，不移动任何文件")
	cmd.Flags().Bool("no-report", false, "不写入 <path>/.triage/report.json")
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "report [path]",
		Short: "显示 path 最近一次运行的报告",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := c.loadEffective(cmd, pathArg(args), false)
			if err != nil {
				return failed(err)
			}
			b := c.bundle(eff.Language)

			rr, ok, err := reportstore.New(eff.Path, true).Read(kind)
			if err != nil {
				return failed(err)
			}
			if !ok {
				return failed(errors.New(b.Get("report_none", "path", eff.Path)))
			}
			c.emitReport(rr, b)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "只看某类运行：sort|gather（默认最近一次）")
	return cmd
}

// finish 落盘报告（非 dry-run 且启用时）、输出报告并决定退出码。
func (c *cli) finish(rr domain.RunReport, eff config.EffectiveConfig, b *i18n.Bundle) error {
	var writeErr error
	if eff.WriteReport && !eff.DryRun {
		writeErr = reportstore.New(eff.Path, false).Write(rr)
		if errors.Is(writeErr, reportstore.ErrNoRoot) {
			// 目录本身不存在：错误已在报告中。
			writeErr = nil
		}
	}

	c.emitReport(rr, b)
	if writeErr != nil {
		return failed(fmt.Errorf("写入报告失败：%w", writeErr))
	}
	if rr.Failed() {
		return errSilentFailure
	}
	return nil
}
