package run

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

type recordObserver struct {
	mu sync.Mutex

	starts   []string
	phases   []string
	items    []string
	progress [][2]int
}

func (o *recordObserver) OnStart(kind, path string, dryRun bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, kind)
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnItemDone(idx, total int, res domain.ItemPlan, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, res.Key+":"+string(res.Outcome))
}

func (o *recordObserver) OnProgress(done, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, [2]int{done, total})
}

func TestSort_EmitsPhaseItemAndProgressEvents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.arw"), "a")
	writeXMP(t, filepath.Join(root, "A.xmp"), "1", "")
	writeFile(t, filepath.Join(root, "B.arw"), "b")

	obs := &recordObserver{}
	_ = Sort(context.Background(), sortOpts(root), obs)

	if !reflect.DeepEqual(obs.starts, []string{"sort"}) {
		t.Fatalf("OnStart 不符合预期：%v", obs.starts)
	}
	if want := []string{"scan", "exec"}; !reflect.DeepEqual(obs.phases, want) {
		t.Fatalf("阶段事件不符合预期：got=%v want=%v", obs.phases, want)
	}
	if want := []string{"a:rated", "b:missing"}; !reflect.DeepEqual(obs.items, want) {
		t.Fatalf("条目事件不符合预期：got=%v want=%v", obs.items, want)
	}
	if want := [][2]int{{1, 2}, {2, 2}}; !reflect.DeepEqual(obs.progress, want) {
		t.Fatalf("进度不符合预期：got=%v want=%v", obs.progress, want)
	}
}

func TestGather_ProgressOnlyAfterSuccessfulMoves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.jpg"), "top")
	writeFile(t, filepath.Join(root, "RATING_1", "A.jpg"), "conflict")
	writeFile(t, filepath.Join(root, "RATING_1", "B.jpg"), "b")

	obs := &recordObserver{}
	_ = Gather(context.Background(), GatherOptions{Path: root}, obs)

	if want := []string{"A.jpg:collision", "B.jpg:gathered"}; !reflect.DeepEqual(obs.items, want) {
		t.Fatalf("条目事件不符合预期：got=%v want=%v", obs.items, want)
	}
	if want := [][2]int{{1, 2}}; !reflect.DeepEqual(obs.progress, want) {
		t.Fatalf("进度不符合预期：got=%v want=%v", obs.progress, want)
	}
}

func TestSort_NilObserverSameStats(t *testing.T) {
	mk := func() string {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "A.arw"), "a")
		writeXMP(t, filepath.Join(root, "A.xmp"), "2", "Red")
		writeFile(t, filepath.Join(root, "B.arw"), "b")
		return root
	}

	a := Sort(context.Background(), sortOpts(mk()), nil)
	b := Sort(context.Background(), sortOpts(mk()), &recordObserver{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("observer 不应改变结果：\nnil=%+v\nobs=%+v", a, b)
	}
}

func TestMulti_SkipsNil(t *testing.T) {
	r := &recordObserver{}
	var calls int
	m := Multi(nil, r, ProgressFunc(func(int, int) { calls++ }))
	m.OnProgress(1, 1)
	if calls != 1 || len(r.progress) != 1 {
		t.Fatalf("Multi 应转发给所有非 nil observer：calls=%d progress=%v", calls, r.progress)
	}
}
