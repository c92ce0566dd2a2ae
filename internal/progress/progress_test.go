package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestCounter_ConcurrentIncrements(t *testing.T) {
	c := &Counter{}
	c.Start("transfer", 100, 4096)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Increment()
		}()
	}
	wg.Wait()
	c.Finish()

	assert.Equal(t, 100, c.Current())
	assert.Equal(t, 100, c.Total())
	assert.EqualValues(t, 4096, c.Bytes())
	assert.True(t, c.Finished())
}

func TestBar_ReportsPlannedSize(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var out bytes.Buffer
	b := NewBar(&out)

	b.Start("Transferring", 0, 2048)
	b.Increment()
	b.Finish()

	assert.Contains(t, out.String(), "Transferring: 0 files, 2.0 KiB")
}

var _ Sink = Nop{}
var _ Sink = (*Counter)(nil)
var _ Sink = (*Bar)(nil)
