package app

import (
	"reflect"
	"testing"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

func TestPairCandidates_SortedAndPaired(t *testing.T) {
	fs := domain.NewFileSet("/p")
	fs.Primaries["b"] = "/p/B.arw"
	fs.Primaries["a"] = "/p/A.arw"
	fs.Primaries["c"] = "/p/c.jpg"
	fs.Sidecars["a"] = "/p/A.xmp"
	fs.Sidecars["z"] = "/p/Z.xmp"

	got := PairCandidates(fs)
	want := []domain.Candidate{
		{Key: "a", Primary: "/p/A.arw", Sidecar: "/p/A.xmp"},
		{Key: "b", Primary: "/p/B.arw"},
		{Key: "c", Primary: "/p/c.jpg"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("候选不符合预期：\ngot=%+v\nwant=%+v", got, want)
	}
	if !got[0].HasSidecar() || got[1].HasSidecar() {
		t.Fatalf("HasSidecar 不正确：%+v", got)
	}

	orphans := OrphanSidecars(fs)
	if !reflect.DeepEqual(orphans, []string{"/p/Z.xmp"}) {
		t.Fatalf("孤立 sidecar 不正确：%v", orphans)
	}
}

func TestPairCandidates_Empty(t *testing.T) {
	if got := PairCandidates(domain.NewFileSet("/p")); len(got) != 0 {
		t.Fatalf("空集合应得到空列表：%v", got)
	}
}
