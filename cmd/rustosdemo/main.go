// Command rustosdemo wires up a small multi-task system on the
// simulated HAL: a producer task, a consumer task, a periodic timer and
// a Queue between them, the same "executable reference model" role
// SupraX.go's own Example function plays for the instruction-set core
// this kernel was ported away from.
package main

import (
	"context"
	"fmt"
	"time"

	"rustos/hal/simhal"
	"rustos/kernel"
	"rustos/ktime"
	"rustos/stream"
	"rustos/task"
)

func main() {
	defer func() {
		// Per spec.md, a fault reaching privileged (ISR-equivalent)
		// context is fatal, never contained. Only a panic on main's own
		// goroutine reaches this recover; it is reported and re-raised
		// so the process exits nonzero. A panic on the tick goroutine or
		// a task goroutine (such as a fault in the idle task) does not
		// pass through here and ends the process directly.
		if r := recover(); r != nil {
			fmt.Println("rustosdemo: fatal kernel fault:", r)
			panic(r)
		}
	}()

	idle := task.NewIdle(func(t *task.Task) {
		for {
			t.ParkUntilResumed()
		}
	}, make([]uintptr, task.MinStackWords))

	k := kernel.New(kernel.Config{
		IdleTask:  idle,
		CtxSwitch: simhal.NewContextSwitcher(),
	})

	readings := stream.NewQueue[int](k, 4)

	producer := task.New(func(t *task.Task) {
		sample := 0
		for i := 0; i < 10; i++ {
			sample += 7
			readings.Push(t, sample)
			t.Sleep(3)
		}
		t.Stop()
	}, 5, make([]uintptr, task.MinStackWords))

	consumer := task.New(func(t *task.Task) {
		for i := 0; i < 10; i++ {
			v := readings.Pop(t)
			fmt.Printf("consumer: reading #%d = %d\n", i, v)
		}
		t.Stop()
	}, 3, make([]uintptr, task.MinStackWords))

	if err := k.AddTask(producer); err != nil {
		panic(err)
	}
	if err := k.AddTask(consumer); err != nil {
		panic(err)
	}

	var heartbeats int
	if _, err := k.NewLoopingTimer(5, func() { heartbeats++ }); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	tick := simhal.NewTickSource()
	go k.Init(ctx, tick, ktime.NewDuration(1))

	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(5 * time.Millisecond)

	snap := k.Snapshot()
	fmt.Printf("system ticks elapsed: %d, heartbeats fired: %d\n", snap.SystemTicks, heartbeats)
}
