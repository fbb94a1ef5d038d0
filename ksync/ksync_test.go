package ksync_test

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"rustos/bitvec"
	"rustos/hal/simhal"
	"rustos/kernel"
	"rustos/ksync"
	"rustos/ktime"
	"rustos/task"
)

func stack() []uintptr { return make([]uintptr, task.MinStackWords) }

func idleTask() *task.Task {
	return task.NewIdle(func(tk *task.Task) {
		for {
			tk.ParkUntilResumed()
		}
	}, stack())
}

type fakeTickSource struct{}

func (fakeTickSource) Start(ktime.Duration, func()) {}
func (fakeTickSource) Stop()                        {}

func newTestKernel() *kernel.Kernel {
	return kernel.New(kernel.Config{
		IdleTask:  idleTask(),
		CtxSwitch: simhal.NewContextSwitcher(),
	})
}

func TestSemaphoreAcquireBlocksUntilReleased(t *testing.T) {
	k := newTestKernel()
	sem := ksync.NewSemaphore(k)

	acquired := make(chan struct{})
	waiter := task.New(func(tk *task.Task) {
		sem.Acquire(tk)
		close(acquired)
		tk.Stop()
	}, 3, stack())

	if err := k.AddTask(waiter); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	select {
	case <-acquired:
		t.Fatal("should still be blocked with nobody releasing")
	case <-time.After(20 * time.Millisecond):
	}

	sem.Release()
	<-acquired
}

func TestSemaphoreWaitTimesOutWithoutRelease(t *testing.T) {
	k := newTestKernel()
	sem := ksync.NewSemaphore(k)

	result := make(chan bool, 1)
	waiter := task.New(func(tk *task.Task) {
		result <- sem.Wait(tk, 3)
		tk.Stop()
	}, 3, stack())

	if err := k.AddTask(waiter); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	for k.Snapshot().SleepingCount != 1 {
		runtime.Gosched()
	}
	for i := 0; i < 3; i++ {
		k.OnTick()
	}

	if got := <-result; got {
		t.Fatal("want a timeout (false) with nobody releasing")
	}
}

func TestSemaphoreWaitSucceedsOnReleaseBeforeTimeout(t *testing.T) {
	k := newTestKernel()
	sem := ksync.NewSemaphore(k)

	result := make(chan bool, 1)
	waiter := task.New(func(tk *task.Task) {
		result <- sem.Wait(tk, 10)
		tk.Stop()
	}, 3, stack())

	if err := k.AddTask(waiter); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	for k.Snapshot().SleepingCount != 1 {
		runtime.Gosched()
	}
	sem.Release()

	if got := <-result; !got {
		t.Fatal("want success (true) when released before the timeout")
	}
}

func TestRendezvousReleasesAllOnceMaskComplete(t *testing.T) {
	k := newTestKernel()
	var mask bitvec.BitVec
	mask.Set(2)
	mask.Set(3)
	rdv := ksync.NewRendezvous(k, mask)

	var mu sync.Mutex
	var order []task.Priority
	record := func(p task.Priority) {
		mu.Lock()
		order = append(order, p)
		mu.Unlock()
	}

	doneA := make(chan struct{})
	doneB := make(chan struct{})

	a := task.New(func(tk *task.Task) {
		rdv.Meet(tk)
		record(tk.Priority())
		close(doneA)
		tk.Stop()
	}, 2, stack())
	b := task.New(func(tk *task.Task) {
		rdv.Meet(tk)
		record(tk.Priority())
		close(doneB)
		tk.Stop()
	}, 3, stack())

	if err := k.AddTask(a); err != nil {
		t.Fatal(err)
	}
	if err := k.AddTask(b); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	<-doneA
	<-doneB

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 {
		t.Fatalf("want both tasks past the barrier, got %v", order)
	}
}

func TestMutexHandsOffToWaiterOnRelease(t *testing.T) {
	k := newTestKernel()
	mu := ksync.NewMutex(k, 0)

	holderAcquired := make(chan struct{})
	finalValue := make(chan int, 1)

	holder := task.New(func(tk *task.Task) {
		v := mu.Acquire(tk)
		*v++
		close(holderAcquired)
		tk.Sleep(3) // hold the mutex across ticks, forcing the waiter to block
		if err := mu.Release(tk); err != nil {
			t.Error(err)
		}
		tk.Stop()
	}, 3, stack())

	waiter := task.New(func(tk *task.Task) {
		<-holderAcquired
		v := mu.Acquire(tk)
		finalValue <- *v
		tk.Stop()
	}, 2, stack())

	if err := k.AddTask(holder); err != nil {
		t.Fatal(err)
	}
	if err := k.AddTask(waiter); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	for k.Snapshot().SleepingCount != 1 {
		runtime.Gosched()
	}
	for i := 0; i < 3; i++ {
		k.OnTick()
	}

	if got := <-finalValue; got != 1 {
		t.Fatalf("want the waiter to observe the holder's increment (1), got %d", got)
	}
}

func TestMutexReleaseByNonHolderFails(t *testing.T) {
	k := newTestKernel()
	mu := ksync.NewMutex(k, 0)

	errCh := make(chan error, 1)
	bystander := task.New(func(tk *task.Task) {
		errCh <- mu.Release(tk)
		tk.Stop()
	}, 1, stack())

	if err := k.AddTask(bystander); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Init(ctx, fakeTickSource{}, ktime.NewDuration(1))

	if err := <-errCh; err == nil {
		t.Fatal("want an error releasing a mutex never acquired")
	}
}
