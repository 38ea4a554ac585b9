package planner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/ImagingTriage/internal/classify"
	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

func TestPlanSort_RatedWithSidecar(t *testing.T) {
	root := t.TempDir()
	c := domain.Candidate{Key: "a", Primary: filepath.Join(root, "A.arw"), Sidecar: filepath.Join(root, "A.xmp")}

	p := PlanSort(Policy{Root: root, Mode: classify.ModeRatingLabel}, c, domain.Metadata{Rating: "5", Label: "Red"}, nil)

	if p.Outcome != domain.OutcomeRated || p.Folder != "RATING_5-LABEL_Red" {
		t.Fatalf("计划不符合预期：%+v", p)
	}
	if len(p.Moves) != 2 {
		t.Fatalf("期望 2 个移动：%+v", p.Moves)
	}
	if p.Moves[0].DstAbs != filepath.Join(root, "RATING_5-LABEL_Red", "A.arw") || p.Moves[1].DstAbs != filepath.Join(root, "RATING_5-LABEL_Red", "A.xmp") {
		t.Fatalf("目标路径不正确：%+v", p.Moves)
	}
	if len(p.Errors) != 0 {
		t.Fatalf("不期望诊断：%v", p.Errors)
	}
}

func TestPlanSort_UnratedReasons(t *testing.T) {
	root := t.TempDir()

	noSidecar := domain.Candidate{Key: "b", Primary: filepath.Join(root, "B.arw")}
	p := PlanSort(Policy{Root: root, Mode: classify.ModeRatingLabel}, noSidecar, domain.Metadata{}, nil)
	if p.Outcome != domain.OutcomeMissing || p.Reason != domain.UnclassifiedNoSidecar || p.Folder != domain.MissingFolder {
		t.Fatalf("无 sidecar 计划不正确：%+v", p)
	}

	withSidecar := domain.Candidate{Key: "c", Primary: filepath.Join(root, "C.arw"), Sidecar: filepath.Join(root, "C.xmp")}
	p = PlanSort(Policy{Root: root, Mode: classify.ModeRatingLabel, InhibitMoveUnrated: true}, withSidecar, domain.Metadata{Rating: "0", Label: "None"}, nil)
	if p.Outcome != domain.OutcomeIgnored || p.Reason != domain.UnclassifiedNoMetadata || len(p.Moves) != 0 {
		t.Fatalf("inhibit 计划不正确：%+v", p)
	}
}

func TestPlanSort_MetaErrorTreatedAsNoMetadata(t *testing.T) {
	root := t.TempDir()
	c := domain.Candidate{Key: "a", Primary: filepath.Join(root, "A.arw"), Sidecar: filepath.Join(root, "A.xmp")}

	p := PlanSort(Policy{Root: root, Mode: classify.ModeRatingLabel}, c, domain.Metadata{Rating: "5"}, errors.New("boom"))
	if p.Outcome != domain.OutcomeMissing || p.Reason != domain.UnclassifiedNoMetadata {
		t.Fatalf("解析失败应视为无元数据：%+v", p)
	}
	if len(p.Errors) != 1 || !strings.Contains(p.Errors[0], "A.xmp") {
		t.Fatalf("诊断应包含 sidecar 文件名：%v", p.Errors)
	}
}

func TestPlanSort_Collision(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "RATING_3"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "RATING_3", "A.xmp"), []byte("old"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	c := domain.Candidate{Key: "a", Primary: filepath.Join(root, "A.arw"), Sidecar: filepath.Join(root, "A.xmp")}

	p := PlanSort(Policy{Root: root, Mode: classify.ModeRatingLabel}, c, domain.Metadata{Rating: "3"}, nil)
	if p.Outcome != domain.OutcomeCollision || len(p.Errors) != 1 {
		t.Fatalf("期望冲突：%+v", p)
	}
}

func TestPlanSort_ExistsCheckFails(t *testing.T) {
	old := existsFunc
	existsFunc = func(string) (bool, error) { return false, os.ErrPermission }
	defer func() { existsFunc = old }()

	c := domain.Candidate{Key: "a", Primary: "/p/A.arw"}
	p := PlanSort(Policy{Root: "/p", Mode: classify.ModeRating}, c, domain.Metadata{Rating: "1"}, nil)
	if p.Outcome != domain.OutcomeFailed || len(p.Errors) != 1 {
		t.Fatalf("期望失败：%+v", p)
	}
}

func TestPlanSort_UnsafeLabel(t *testing.T) {
	c := domain.Candidate{Key: "a", Primary: "/p/A.arw", Sidecar: "/p/A.xmp"}
	p := PlanSort(Policy{Root: "/p", Mode: classify.ModeRatingLabel}, c, domain.Metadata{Label: "../x"}, nil)
	if p.Outcome != domain.OutcomeFailed || len(p.Moves) != 0 {
		t.Fatalf("非法 label 应失败且不移动：%+v", p)
	}
}
