package reportstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

func sortReport() domain.RunReport {
	st := domain.NewRunStats()
	st.ProcessedCount = 2
	st.FolderDistribution["RATING_3"] = 2
	return domain.RunReport{
		RunID:      "0b6f3c1e-8d5a-4f7e-9a51-6c2d8f0e7b11",
		Kind:       domain.KindSort,
		Path:       "/photos",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
		Sort:       &st,
	}
}

func TestStore_WriteRead(t *testing.T) {
	root := t.TempDir()
	s := New(root, false)

	if err := s.Write(sortReport()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	for _, kind := range []string{"", domain.KindSort} {
		rr, ok, err := s.Read(kind)
		if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
		if !ok {
			t.Fatalf("期望读到报告（kind=%q），但 ok=false", kind)
		}
		if rr.Sort == nil || rr.Sort.ProcessedCount != 2 || rr.Sort.FolderDistribution["RATING_3"] != 2 {
			t.Fatalf("报告内容不一致：%+v", rr.Sort)
		}
	}

	if _, ok, err := s.Read(domain.KindGather); err != nil || ok {
		t.Fatalf("未写入的 gather 报告应 ok=false：ok=%v err=%v", ok, err)
	}
}

func TestStore_LatestFollowsLastWrite(t *testing.T) {
	root := t.TempDir()
	s := New(root, false)
	if err := s.Write(sortReport()); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	g := domain.NewGatherStats()
	g.MovedCount = 7
	if err := s.Write(domain.RunReport{RunID: "x", Kind: domain.KindGather, Gather: &g}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	rr, ok, err := s.Read("")
	if err != nil || !ok {
		t.Fatalf("读取失败：ok=%v err=%v", ok, err)
	}
	if rr.Kind != domain.KindGather || rr.Gather == nil || rr.Gather.MovedCount != 7 {
		t.Fatalf("report.json 应为最近一次运行：%+v", rr)
	}
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	root := t.TempDir()
	s := New(root, true)

	if err := s.Write(sortReport()); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}
	if _, err := os.Stat(filepath.Join(root, DirName)); !os.IsNotExist(err) {
		t.Fatalf("只读模式不应创建目录，但 Stat err=%v", err)
	}
}

func TestStore_RejectsBadKind(t *testing.T) {
	s := New(t.TempDir(), false)
	if _, err := s.Path("../x"); err == nil {
		t.Fatalf("期望非法 kind 报错")
	}
	rr := sortReport()
	rr.Kind = ""
	if err := s.Write(rr); err == nil {
		t.Fatalf("期望空 kind 报错")
	}
}

func TestStore_CorruptReport(t *testing.T) {
	root := t.TempDir()
	s := New(root, false)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), LatestName), []byte("{"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if _, _, err := s.Read(""); err == nil {
		t.Fatalf("期望损坏报错")
	}
}

func TestStore_MissingRootNotCreated(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	s := New(root, false)
	if err := s.Write(sortReport()); !errors.Is(err, ErrNoRoot) {
		t.Fatalf("期望 ErrNoRoot，实际：%v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("不应创建根目录，但 Stat err=%v", err)
	}
}
