package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

const waitFor = time.Second

func newFake() *testingclock.FakeClock {
	return testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestValue_InitialValueWithoutDelay(t *testing.T) {
	v := New("soup", 100*time.Millisecond, WithClock(newFake()))
	assert.Equal(t, "soup", v.Get())
	assert.False(t, v.Pending())
}

func TestValue_RapidUpdatesCommitOnceAfterLastChange(t *testing.T) {
	clk := newFake()
	v := New("", 100*time.Millisecond, WithClock(clk))

	var mu sync.Mutex
	var commits []string
	v.OnCommit(func(s string) {
		mu.Lock()
		defer mu.Unlock()
		commits = append(commits, s)
	})

	// t=0, 30, 60
	v.Set("p")
	clk.Step(30 * time.Millisecond)
	v.Set("pa")
	clk.Step(30 * time.Millisecond)
	v.Set("pas")

	// t=159: the last window has not elapsed.
	clk.Step(99 * time.Millisecond)
	assert.Equal(t, "", v.Get())
	assert.True(t, v.Pending())

	// t=160
	clk.Step(time.Millisecond)
	require.Eventually(t, func() bool { return v.Get() == "pas" }, waitFor, time.Millisecond)

	// Earlier timers were superseded and never fire.
	clk.Step(time.Second)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pas"}, commits)
}

func TestValue_SeparateWindowsCommitSeparately(t *testing.T) {
	clk := newFake()
	v := New(0, 50*time.Millisecond, WithClock(clk))

	v.Set(1)
	clk.Step(50 * time.Millisecond)
	require.Eventually(t, func() bool { return v.Get() == 1 }, waitFor, time.Millisecond)

	v.Set(2)
	clk.Step(49 * time.Millisecond)
	assert.Equal(t, 1, v.Get())
	clk.Step(time.Millisecond)
	require.Eventually(t, func() bool { return v.Get() == 2 }, waitFor, time.Millisecond)
}

func TestValue_StopCancelsPending(t *testing.T) {
	clk := newFake()
	v := New("a", 10*time.Millisecond, WithClock(clk))

	v.Set("b")
	v.Stop()
	clk.Step(time.Second)
	assert.Equal(t, "a", v.Get())
	assert.False(t, v.Pending())

	v.Set("c")
	clk.Step(time.Second)
	assert.Equal(t, "a", v.Get())
}

func TestValue_FlushCommitsImmediately(t *testing.T) {
	clk := newFake()
	v := New("a", time.Minute, WithClock(clk))

	got := make(chan string, 1)
	v.OnCommit(func(s string) { got <- s })

	v.Set("b")
	v.Flush()
	assert.Equal(t, "b", v.Get())
	assert.Equal(t, "b", <-got)

	// Nothing left to commit.
	clk.Step(time.Hour)
	v.Flush()
	assert.Len(t, got, 0)
}

func TestValue_DefaultDelay(t *testing.T) {
	v := New(1, 0)
	assert.Equal(t, DefaultDelay, v.Delay())
}

func TestValue_RealClock(t *testing.T) {
	v := New("", 5*time.Millisecond)
	v.Set("x")
	require.Eventually(t, func() bool { return v.Get() == "x" }, waitFor, time.Millisecond)
}

func TestValue_WaitBlocksForRunningListener(t *testing.T) {
	clk := newFake()
	v := New("", 100*time.Millisecond, WithClock(clk))

	started := make(chan struct{})
	release := make(chan struct{})
	var done atomic.Bool
	v.OnCommit(func(string) {
		close(started)
		<-release
		done.Store(true)
	})

	v.Set("slow")
	// FakeClock runs AfterFunc callbacks inside Step, so step on another
	// goroutine while the listener is held.
	stepped := make(chan struct{})
	go func() {
		defer close(stepped)
		clk.Step(100 * time.Millisecond)
	}()
	<-started

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	v.Wait()
	assert.True(t, done.Load())
	<-stepped
}

func TestValue_WaitAlongsideCommits(t *testing.T) {
	v := New(0, time.Minute, WithClock(newFake()))
	var commits atomic.Int32
	v.OnCommit(func(int) { commits.Add(1) })

	v.Wait()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 100; i++ {
			v.Set(i)
			v.Flush()
		}
	}()
	for range 100 {
		v.Wait()
	}
	wg.Wait()
	v.Wait()

	assert.Equal(t, int32(100), commits.Load())
	assert.Equal(t, 100, v.Get())
}
