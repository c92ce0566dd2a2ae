package progress

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Sink receives one Increment per finished unit of work.
type Sink interface {
	Start(title string, total int, bytes int64)
	Increment()
	Finish()
}

type Nop struct{}

func (Nop) Start(string, int, int64) {}
func (Nop) Increment()               {}
func (Nop) Finish()                  {}

// Counter records progress without rendering it.
type Counter struct {
	mu       sync.Mutex
	title    string
	total    int
	bytes    int64
	current  atomic.Int64
	finished bool
}

func (c *Counter) Start(title string, total int, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title, c.total, c.bytes = title, total, bytes
	c.finished = false
	c.current.Store(0)
}

func (c *Counter) Increment() {
	c.current.Add(1)
}

func (c *Counter) Finish() {
	c.mu.Lock()
	c.finished = true
	c.mu.Unlock()
}

func (c *Counter) Current() int {
	return int(c.current.Load())
}

func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Counter) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

func (c *Counter) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// Bar renders a terminal progress bar.
type Bar struct {
	mu  sync.Mutex
	out io.Writer
	bar *pterm.ProgressbarPrinter
}

func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

func (b *Bar) Start(title string, total int, bytes int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pterm.Info.WithWriter(b.out).Printfln("%s: %d files, %s", title, total, humanize.IBytes(uint64(bytes)))
	if total == 0 {
		return
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithWriter(b.out).
		Start()
	if err != nil {
		return
	}
	b.bar = bar
}

func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.Increment()
	}
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_, _ = b.bar.Stop()
		b.bar = nil
	}
}
