package watch

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 是默认的静默窗口：最后一个相关事件之后等待这么久才触发。
const DefaultDebounce = 2 * time.Second

// Trigger 表示一批已静默下来的文件变化。
type Trigger struct {
	Files []string // 去重后的绝对路径（排序）
	At    time.Time
}

// Watcher 监视单个目录（不递归）中新出现/被写入的相关文件。
//
// 相关文件由 Relevant 决定；目录内文件被移走（Remove/Rename）不触发。
// 静默窗口内的多次事件合并为一次 Trigger；消费者未取走上一次 Trigger 时，
// 新事件会并入待发送集合，不会阻塞事件循环。
type Watcher struct {
	Dir      string
	Triggers <-chan Trigger // Read-only external channel

	triggers chan Trigger
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	relevant func(name string) bool
}

// New 创建 Watcher；debounce<=0 时使用 DefaultDebounce，relevant 为 nil 时所有文件都相关。
func New(dir string, debounce time.Duration, relevant func(name string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if relevant == nil {
		relevant = func(string) bool { return true }
	}

	ch := make(chan Trigger, 1)
	return &Watcher{
		Dir:      dir,
		Triggers: ch,
		triggers: ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
		relevant: relevant,
	}, nil
}

// Start 开始监视目录。
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop 关闭监视并等待事件循环退出，随后关闭 Triggers。
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.triggers)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := map[string]struct{}{}
	var last time.Time

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(filepath.Base(event.Name)) {
				continue
			}
			pending[event.Name] = struct{}{}
			last = time.Now()

		case <-ticker.C:
			if len(pending) == 0 || time.Since(last) < w.debounce {
				continue
			}
			t := Trigger{Files: keys(pending), At: time.Now()}
			select {
			case w.triggers <- t:
				pending = map[string]struct{}{}
			default:
				// 上一次 Trigger 还没被取走：保留 pending，下个 tick 再试。
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// 监视错误（例如事件队列溢出）不致命；下一次变化仍会触发。
		}
	}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
