package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/aroesz98/crtos-go/kernel"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name]",
	Short: "Run one of the kernel's end-to-end behavior scenarios (S1-S4, S6)",
	Long: `Each scenario spins up its own Kernel, wires a handful of tasks and
IPC objects, and reports what it observed. Run with no arguments to run all
of them in sequence.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		for _, s := range scenarios {
			if name != "" && s.name != name {
				continue
			}
			fmt.Printf("== %s: %s ==\n", s.name, s.desc)
			fmt.Println(s.run())
			fmt.Println()
		}
	},
}

type scenario struct {
	name string
	desc string
	run  func() string
}

var scenarios = []scenario{
	{"S1", "strict priority preemption", scenarioPriorityPreemption},
	{"S2", "semaphore FIFO handoff", scenarioSemaphoreFIFO},
	{"S3", "queue producer/consumer blocking", scenarioQueueBlocking},
	{"S4", "delayed wake ordering", scenarioDelayOrdering},
	{"S6", "auto-reload software timer", scenarioTimerAutoReload},
}

func newSimKernel(tickRateHz uint32) *kernel.Kernel {
	k := kernel.New()
	k.SetTickRate(tickRateHz)
	k.InitMemory(make([]byte, 64*1024))
	return k
}

func scenarioPriorityPreemption() string {
	k := newSimKernel(20000)
	var countA, countB uint64
	k.CreateTask(func(any) {
		for {
			countA++
			k.Yield()
		}
	}, "low", 256, nil, 3)
	k.CreateTask(func(any) {
		for {
			countB++
			k.Yield()
		}
	}, "high", 256, nil, 5)

	go k.Start()
	time.Sleep(50 * time.Millisecond)
	return fmt.Sprintf("low-priority turns=%d high-priority turns=%d (want high >> low)", countA, countB)
}

func scenarioSemaphoreFIFO() string {
	k := newSimKernel(20000)
	sem := k.NewSemaphore(0)
	order := make(chan string, 3)

	mk := func(name string) func(any) {
		return func(any) {
			sem.Wait(1000)
			order <- name
			k.DeleteSelf()
		}
	}
	k.CreateTask(mk("W1"), "W1", 256, nil, 4)
	k.CreateTask(mk("W2"), "W2", 256, nil, 4)
	k.CreateTask(mk("W3"), "W3", 256, nil, 4)
	k.CreateTask(func(any) {
		for i := 0; i < 3; i++ {
			k.Delay(10)
			sem.Signal()
		}
		k.DeleteSelf()
	}, "signaler", 256, nil, 5)

	go k.Start()
	var got []string
	for i := 0; i < 3; i++ {
		select {
		case name := <-order:
			got = append(got, name)
		case <-time.After(time.Second):
			return "timed out waiting for waiters to wake"
		}
	}
	return fmt.Sprintf("wake order=%v (want [W1 W2 W3])", got)
}

func scenarioQueueBlocking() string {
	k := newSimKernel(20000)
	q, res := k.NewQueue(2, 4)
	if !res.OK() {
		return fmt.Sprintf("NewQueue failed: %v", res)
	}

	done := make(chan struct{})
	k.CreateTask(func(any) {
		for i := byte(1); i <= 3; i++ {
			q.Send([]byte{i, i, i, i})
		}
		close(done)
		k.DeleteSelf()
	}, "producer", 256, nil, 4)

	received := make(chan int, 1)
	k.CreateTask(func(any) {
		k.Delay(50)
		var buf [4]byte
		n := 0
		for i := 0; i < 3; i++ {
			if res := q.Receive(buf[:], 1000); res.OK() {
				n++
			}
		}
		received <- n
		k.DeleteSelf()
	}, "consumer", 256, nil, 4)

	go k.Start()
	select {
	case n := <-received:
		<-done
		return fmt.Sprintf("consumer drained %d/3 messages after producer blocked on a full queue", n)
	case <-time.After(time.Second):
		return "timed out waiting for consumer"
	}
}

func scenarioDelayOrdering() string {
	k := newSimKernel(20000)
	record := make(chan string, 3)
	mk := func(name string, delay uint32) func(any) {
		return func(any) {
			k.Delay(delay)
			record <- name
			k.DeleteSelf()
		}
	}
	k.CreateTask(mk("A", 30), "A", 256, nil, 4)
	k.CreateTask(mk("B", 10), "B", 256, nil, 4)
	k.CreateTask(mk("C", 20), "C", 256, nil, 4)

	go k.Start()
	var order []string
	for i := 0; i < 3; i++ {
		select {
		case name := <-record:
			order = append(order, name)
		case <-time.After(time.Second):
			return "timed out waiting for wakes"
		}
	}
	return fmt.Sprintf("wake order=%v (want [B C A])", order)
}

func scenarioTimerAutoReload() string {
	k := newSimKernel(1000)
	var count atomic.Int64
	var timer kernel.SoftwareTimer
	k.InitTimer(&timer, 100, func(any) { count.Add(1) }, nil, true)
	k.StartTimer(&timer)

	go k.Start()
	time.Sleep(1050 * time.Millisecond)
	return fmt.Sprintf("fire count after 1050ms at 1kHz with 100-tick period=%d (want 10 or 11)", count.Load())
}
