package run

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

func TestGuard_RejectsSecondAcquire(t *testing.T) {
	var g Guard

	release, err := g.TryAcquire()
	require.NoError(t, err)
	assert.True(t, g.Running())

	_, err = g.TryAcquire()
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	release()
	release()
	assert.False(t, g.Running())

	release2, err := g.TryAcquire()
	require.NoError(t, err)
	release2()
}

func waitDone(t *testing.T, r *Runner) (domain.RunReport, []Event) {
	t.Helper()
	var progress []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-r.Events():
			if ev.Kind == EventDone {
				return ev.Report, progress
			}
			progress = append(progress, ev)
		case <-timeout:
			t.Fatal("等待运行完成超时")
			return domain.RunReport{}, nil
		}
	}
}

func TestRunner_SortDeliversProgressAndDone(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.arw"), "a")
	writeXMP(t, filepath.Join(root, "A.xmp"), "3", "None")
	writeFile(t, filepath.Join(root, "B.arw"), "b")

	r := NewRunner(nil, nil)
	require.NoError(t, r.StartSort(context.Background(), sortOpts(root)))

	rep, progress := waitDone(t, r)
	r.Wait()

	require.NotNil(t, rep.Sort)
	assert.Equal(t, domain.KindSort, rep.Kind)
	assert.Equal(t, 1, rep.Sort.ProcessedCount)
	assert.Equal(t, 1, rep.Sort.MovedToMissing)
	assert.False(t, r.Busy())

	last := 0
	for _, ev := range progress {
		assert.Equal(t, EventProgress, ev.Kind)
		assert.GreaterOrEqual(t, ev.Done, last)
		assert.Equal(t, 2, ev.Total)
		last = ev.Done
	}
}

func TestRunner_RejectsOverlappingRun(t *testing.T) {
	g := &Guard{}
	release, err := g.TryAcquire()
	require.NoError(t, err)

	r := NewRunner(g, nil)
	assert.ErrorIs(t, r.StartGather(context.Background(), GatherOptions{Path: t.TempDir()}), ErrAlreadyRunning)

	release()
	require.NoError(t, r.StartGather(context.Background(), GatherOptions{Path: t.TempDir()}))
	rep, _ := waitDone(t, r)
	require.NotNil(t, rep.Gather)
	assert.Empty(t, rep.Gather.Errors)
}

func TestRunner_ExtraObserverReceivesEvents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "1")

	obs := &recordObserver{}
	r := NewRunner(nil, obs)
	require.NoError(t, r.StartSort(context.Background(), sortOpts(root)))
	_, _ = waitDone(t, r)
	r.Wait()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"sort"}, obs.starts)
	assert.Equal(t, []string{"a:missing"}, obs.items)
}
