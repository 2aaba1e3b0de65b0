package main

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/huangjl/fibersched/fiberrt"
)

func newDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "run one of the six fibersched end-to-end scenarios",
	}
	cmd.AddCommand(
		scenarioCommand("s1", "fiber lifecycle: yield to hold, resume, observe ordering", demoS1),
		scenarioCommand("s2", "affinity: five tasks pinned to one worker's thread id", demoS2),
		scenarioCommand("s3", "recursive scheduling: a fiber resubmits itself to its own thread", demoS3),
		scenarioCommand("s4", "error in fiber: a panic surfaces as EXCEPT without killing the worker", demoS4),
		scenarioCommand("s5", "reset reuse: same fiber id and stack buffer across two lives", demoS5),
		scenarioCommand("s6", "thread handshake: 100 threads each record a distinct tid", demoS6),
	)
	return cmd
}

func scenarioCommand(use, short string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func demoS1() error {
	sched := fiberrt.NewScheduler(1, true, "s1")
	sched.Start()

	f := fiberrt.NewFiber(func() {
		fmt.Println("A")
		fiberrt.YieldToHold()
		fmt.Println("B")
	}, 0, false)

	sched.Schedule(f, fiberrt.AnyThread)
	sched.Schedule(f, fiberrt.AnyThread)

	sched.Stop()
	return nil
}

func demoS2() error {
	sched := fiberrt.NewScheduler(3, false, "s2")
	sched.Start()

	tids := sched.ThreadIDs()
	target := tids[1]

	var mu sync.Mutex
	var seen []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		sched.Schedule(func() {
			defer wg.Done()
			tid := fiberrt.GetThreadId()
			mu.Lock()
			seen = append(seen, tid)
			mu.Unlock()
		}, target)
	}
	wg.Wait()
	sched.Stop()

	for _, tid := range seen {
		if tid != target {
			return fmt.Errorf("task ran on tid %d, want %d", tid, target)
		}
	}
	fmt.Printf("all %d tasks ran on worker tid %d\n", len(seen), target)
	return nil
}

func demoS3() error {
	sched := fiberrt.NewScheduler(1, false, "s3")
	sched.Start()

	var mu sync.Mutex
	remaining := 5
	executions := 0
	done := make(chan struct{})

	var f *fiberrt.Fiber
	f = fiberrt.NewFiber(func() {
		for {
			mu.Lock()
			executions++
			if remaining == 0 {
				mu.Unlock()
				close(done)
				fiberrt.YieldToHold()
				return
			}
			remaining--
			tid := fiberrt.GetThreadId()
			mu.Unlock()
			sched.Schedule(f, tid)
			fiberrt.YieldToHold()
		}
	}, 0, false)

	sched.Schedule(f, fiberrt.AnyThread)
	<-done
	sched.Stop()

	fmt.Printf("fiber ran %d times, counter reached 0\n", executions)
	return nil
}

func demoS4() error {
	sched := fiberrt.NewScheduler(1, false, "s4")
	sched.Start()

	f := fiberrt.NewFiber(func() {
		fmt.Println("X")
		panic("boom")
	}, 0, false)

	sched.Schedule(f, fiberrt.AnyThread)
	for f.State() != fiberrt.StateExcept {
		runtime.Gosched()
	}

	okDone := make(chan struct{})
	sched.Schedule(func() { close(okDone) }, fiberrt.AnyThread)
	<-okDone

	sched.Stop()
	fmt.Println("worker survived the panic and kept draining")
	return nil
}

func demoS5() error {
	var f *fiberrt.Fiber
	f = fiberrt.NewFiber(func() {
		fmt.Printf("fiber %d, thread-local fiber id %d\n", f.ID(), fiberrt.GetFiberId())
	}, 64*1024, false)
	addr1 := f.StackAddr()
	id1 := f.ID()

	f.SwapIn()
	for f.State() != fiberrt.StateTerm {
		runtime.Gosched()
	}

	f.Reset(func() {
		fmt.Println("second life")
	})
	f.SwapIn()
	for f.State() != fiberrt.StateTerm {
		runtime.Gosched()
	}

	if f.ID() != id1 || f.StackAddr() != addr1 {
		return fmt.Errorf("reset did not preserve identity/stack address")
	}
	fmt.Printf("fiber %d reused the same stack buffer across two lives\n", id1)
	return nil
}

func demoS6() error {
	const n = 100
	var mu fiberrt.Mutex
	tids := make([]int, 0, n)
	threads := make([]*fiberrt.Thread, n)

	for i := 0; i < n; i++ {
		threads[i] = fiberrt.NewThread(func() {
			tid := fiberrt.GetThreadId()
			fiberrt.WithLock(&mu, func() {
				tids = append(tids, tid)
			})
		}, "handshake")
	}
	for _, th := range threads {
		th.Join()
	}

	seen := make(map[int]bool, n)
	for _, tid := range tids {
		if seen[tid] {
			return fmt.Errorf("duplicate tid %d", tid)
		}
		seen[tid] = true
	}
	fmt.Printf("%d threads recorded %d distinct tids\n", len(threads), len(seen))
	return nil
}
