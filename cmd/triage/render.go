package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
	"github.com/John-Robertt/ImagingTriage/internal/i18n"
)

type styles struct {
	header lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
}

// newStyles 按目标 writer 的终端能力创建样式；非终端时输出纯文本。
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		err:    r.NewStyle().Foreground(lipgloss.Color("196")),
		dim:    r.NewStyle().Faint(true),
	}
}

func renderReport(st styles, b *i18n.Bundle, rr domain.RunReport) string {
	var sb strings.Builder
	switch {
	case rr.Sort != nil:
		renderSort(&sb, st, b, rr, *rr.Sort)
	case rr.Gather != nil:
		renderGather(&sb, st, b, rr, *rr.Gather)
	}
	return sb.String()
}

func line(sb *strings.Builder, s string) {
	sb.WriteString(s)
	sb.WriteByte('\n')
}

func renderSort(sb *strings.Builder, st styles, b *i18n.Bundle, rr domain.RunReport, s domain.RunStats) {
	line(sb, st.header.Render(b.Get("report_header")))
	line(sb, st.dim.Render(b.Get("report_path", "path", rr.Path)))
	if rr.DryRun {
		line(sb, st.warn.Render(b.Get("report_dry_run")))
	}

	line(sb, b.Get("report_total", "count", s.TotalCandidates))
	line(sb, b.Get("report_moved_rated", "count", s.ProcessedCount))
	line(sb, b.Get("report_moved_missing", "count", s.MovedToMissing))
	if s.IntentionallyIgnored > 0 {
		line(sb, b.Get("report_intentionally_ignored", "count", s.IntentionallyIgnored))
	}

	sb.WriteByte('\n')
	line(sb, st.header.Render(b.Get("report_unclassified_header")))
	line(sb, b.Get("report_unclassified_no_sidecar", "count", s.UnclassifiedNoSidecar))
	line(sb, b.Get("report_unclassified_no_metadata", "count", s.UnclassifiedNoMetadata))
	if s.Collisions > 0 {
		line(sb, st.warn.Render(b.Get("report_collisions", "count", s.Collisions)))
	}
	if s.DuplicatesSkipped > 0 {
		line(sb, st.warn.Render(b.Get("report_duplicates", "count", s.DuplicatesSkipped)))
	}

	sb.WriteByte('\n')
	line(sb, st.header.Render(b.Get("report_folder_distribution")))
	dist := s.SortedDistribution()
	if len(dist) == 0 {
		line(sb, b.Get("report_no_files_moved"))
	}
	for _, fc := range dist {
		line(sb, b.Get("report_folder_line", "folder", fc.Folder, "count", fc.Count))
	}

	renderErrors(sb, st, b, s.Errors)
	if s.Canceled {
		sb.WriteByte('\n')
		line(sb, st.warn.Render(b.Get("report_canceled")))
	}
}

func renderGather(sb *strings.Builder, st styles, b *i18n.Bundle, rr domain.RunReport, g domain.GatherStats) {
	line(sb, st.header.Render(b.Get("gather_report_header")))
	line(sb, st.dim.Render(b.Get("report_path", "path", rr.Path)))
	if rr.DryRun {
		line(sb, st.warn.Render(b.Get("report_dry_run")))
	}
	line(sb, b.Get("gather_report_moved", "count", g.MovedCount))
	line(sb, b.Get("gather_report_deleted", "count", g.DeletedFolders))

	if len(g.Conflicts) > 0 {
		sb.WriteByte('\n')
		line(sb, st.warn.Render(b.Get("gather_conflicts_header")))
		for _, f := range g.Conflicts {
			line(sb, "- "+b.Get("gather_error_conflict", "filename", f))
		}
	}

	renderErrors(sb, st, b, g.Errors)
	if g.Canceled {
		sb.WriteByte('\n')
		line(sb, st.warn.Render(b.Get("report_canceled")))
	}
}

func renderErrors(sb *strings.Builder, st styles, b *i18n.Bundle, errs []string) {
	if len(errs) == 0 {
		return
	}
	sb.WriteByte('\n')
	line(sb, st.err.Render(b.Get("report_errors_header")))
	for _, e := range errs {
		line(sb, "- "+e)
	}
}
