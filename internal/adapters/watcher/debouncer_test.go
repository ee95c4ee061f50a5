package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mason/internal/adapters/watcher"
)

type batches struct {
	mu  sync.Mutex
	got [][]string
}

func (b *batches) add(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, paths)
}

func (b *batches) all() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]string(nil), b.got...)
}

func TestDebouncer_Coalesces(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(100*time.Millisecond, b.add)

		d.Add("/p/src/b.c")
		time.Sleep(60 * time.Millisecond)
		d.Add("/p/src/a.c")
		d.Add("/p/src/b.c")

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, b.all(), "window restarts on every add")

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/p/src/a.c", "/p/src/b.c"}}, b.all())
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(watcher.DefaultDebounceWindow, b.add)

		d.Add("/p/one")
		time.Sleep(watcher.DefaultDebounceWindow + time.Millisecond)
		synctest.Wait()
		d.Add("/p/two")
		time.Sleep(watcher.DefaultDebounceWindow + time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/p/one"}, {"/p/two"}}, b.all())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		b := &batches{}
		d := watcher.NewDebouncer(time.Second, b.add)

		d.Flush()
		assert.Empty(t, b.all())

		d.Add("/p/x")
		d.Flush()
		assert.Equal(t, [][]string{{"/p/x"}}, b.all())

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Len(t, b.all(), 1, "flushed paths are not delivered again")
	})
}
