package run

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

// ErrAlreadyRunning 表示已有一次 sort/gather 在运行；新的请求被拒绝而不是排队。
var ErrAlreadyRunning = errors.New("已有整理任务在运行")

// Guard 保证同一时刻至多一次运行。零值可用。
type Guard struct {
	running atomic.Bool
}

// TryAcquire 尝试占用运行权。成功时返回的 release 可重复调用。
func (g *Guard) TryAcquire() (release func(), err error) {
	if !g.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	var once sync.Once
	return func() { once.Do(func() { g.running.Store(false) }) }, nil
}

func (g *Guard) Running() bool { return g.running.Load() }

// EventKind 区分 Runner 投递的消息。
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventDone     EventKind = "done"
)

// Event 是 Runner 投递给界面层的消息。
// EventDone 时 Report 有效；EventProgress 时 Done/Total 有效。
type Event struct {
	Kind   EventKind
	Done   int
	Total  int
	Report domain.RunReport
}

// ChanObserver 把进度转成 Event 投递到 channel。
//
// 进度消息是非阻塞发送：消费者跟不上时丢弃中间进度（completed 仍单调不减），
// 执行 goroutine 永远不会因为界面层而阻塞。
type ChanObserver struct {
	C chan<- Event
}

func (o ChanObserver) OnStart(string, string, bool)                        {}
func (o ChanObserver) OnPhaseDone(string, map[string]any, time.Duration)   {}
func (o ChanObserver) OnItemDone(int, int, domain.ItemPlan, time.Duration) {}

func (o ChanObserver) OnProgress(done, total int) {
	select {
	case o.C <- Event{Kind: EventProgress, Done: done, Total: total}:
	default:
	}
}

// Runner 在后台 goroutine 上执行一次运行，通过 Events() 投递进度与完成消息，
// 由界面层在自己的 goroutine 上消费。
type Runner struct {
	guard  *Guard
	events chan Event
	extra  Observer
	wg     sync.WaitGroup
}

// NewRunner 创建 Runner；guard 为 nil 时使用独立的 Guard。
// extra 会与内部的 ChanObserver 一起收到事件（例如 verbose 日志），可为 nil。
func NewRunner(guard *Guard, extra Observer) *Runner {
	if guard == nil {
		guard = &Guard{}
	}
	return &Runner{
		guard:  guard,
		events: make(chan Event, 64),
		extra:  extra,
	}
}

func (r *Runner) Events() <-chan Event { return r.events }

// Busy 报告当前是否有运行在进行。
func (r *Runner) Busy() bool { return r.guard.Running() }

// StartSort 在后台开始一次 Sort；已有运行时返回 ErrAlreadyRunning。
func (r *Runner) StartSort(ctx context.Context, opts SortOptions) error {
	return r.start(func(obs Observer) domain.RunReport { return SortReport(ctx, opts, obs) })
}

// StartGather 在后台开始一次 Gather；已有运行时返回 ErrAlreadyRunning。
func (r *Runner) StartGather(ctx context.Context, opts GatherOptions) error {
	return r.start(func(obs Observer) domain.RunReport { return GatherReport(ctx, opts, obs) })
}

func (r *Runner) start(fn func(Observer) domain.RunReport) error {
	release, err := r.guard.TryAcquire()
	if err != nil {
		return err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		rep := fn(Multi(ChanObserver{C: r.events}, r.extra))
		// 先释放再投递完成消息：消费者收到 done 后可以立即发起下一次运行。
		release()
		r.events <- Event{Kind: EventDone, Report: rep}
	}()
	return nil
}

// Wait 等待所有已开始的运行投递完成消息。调用方必须同时消费 Events()。
func (r *Runner) Wait() { r.wg.Wait() }
