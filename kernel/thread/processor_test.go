package thread

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/trap"
)

// simulator stands in for switchContext. Switching into a worker runs the
// worker's behavior, which either returns (the worker is preempted by the
// timer) or exits.
type simulator struct {
	t       *testing.T
	p       *Processor
	names   map[*Context]string
	exits   map[string]uintptr
	visited []string
}

func newSimulator(t *testing.T, p *Processor) *simulator {
	return &simulator{
		t:     t,
		p:     p,
		names: map[*Context]string{&p.idle.context: "idle"},
		exits: map[string]uintptr{},
	}
}

func (s *simulator) add(name string) *Thread {
	th := NewThread().Create(FuncPC(testEntry))
	s.names[&th.context] = name
	if _, err := s.p.Push(th); err != nil {
		s.t.Fatal(err)
	}
	return th
}

func (s *simulator) switchContext(from, to *Context) {
	name := s.names[to]
	if name == "idle" {
		return
	}

	s.visited = append(s.visited, name)
	if got := s.p.pool.RunningCount(); got != 1 {
		s.t.Fatalf("expected exactly one running task while %s runs; got %d", name, got)
	}

	if code, ok := s.exits[name]; ok {
		s.p.Exit(code)
		return
	}

	// Run until the timer preempts the worker.
	for ticks := 0; ticks < TicksPerTimeSlice; ticks++ {
		s.p.Tick()
	}
}

func setupProcessor(t *testing.T) (*Processor, *simulator) {
	p := &Processor{}
	p.Init(NewThreadPool(8, NewRoundRobin(TicksPerTimeSlice)), NewThread().Create(FuncPC(testEntry)))

	sim := newSimulator(t, p)
	switchContextFn = sim.switchContext
	return p, sim
}

func restoreProcessorHooks() {
	switchContextFn = switchContext
	panicFn = kfmt.Panic
	enableAndWaitFn = cpu.EnableAndWait
	setTickHandlerFn = trap.SetTickHandler
}

func TestProcessorRoundRobin(t *testing.T) {
	defer restoreProcessorHooks()

	p, sim := setupProcessor(t)
	sim.add("A")
	sim.add("B")
	sim.add("C")

	for i := 0; i < 6; i++ {
		p.schedule()
		if _, running := p.Current(); running {
			t.Fatal("expected no current task after switching back to idle")
		}
	}

	if diff := cmp.Diff([]string{"A", "B", "C", "A", "B", "C"}, sim.visited); diff != "" {
		t.Fatalf("unexpected schedule (-want +got):\n%s", diff)
	}
}

func TestProcessorExit(t *testing.T) {
	defer restoreProcessorHooks()

	var (
		buf     bytes.Buffer
		panics  []interface{}
		waiting int
	)
	kfmt.SetOutputSink(&buf)
	defer kfmt.SetOutputSink(nil)

	panicFn = func(e interface{}) { panics = append(panics, e) }
	enableAndWaitFn = func() { waiting++ }

	p, sim := setupProcessor(t)
	sim.add("A")
	sim.add("B")
	sim.exits["A"] = 7

	p.schedule()
	p.schedule()
	p.schedule()
	p.schedule()

	if diff := cmp.Diff([]string{"A", "B", "B"}, sim.visited[:3]); diff != "" {
		t.Fatalf("unexpected schedule (-want +got):\n%s", diff)
	}

	status, code := p.pool.Status(0)
	if status != StatusExited || code != 7 {
		t.Fatalf("expected task 0 to exit with code 7; got %s, %d", status, code)
	}

	// The simulated switch returns; on hardware the exited thread is never
	// resumed.
	if len(panics) != 1 || panics[0] != errExitReturned {
		t.Fatalf("expected a single errExitReturned panic; got %v", panics)
	}

	if exp := "[sched] task 0 exited with code 7"; !strings.Contains(buf.String(), exp) {
		t.Fatalf("expected output to contain %q; got %q", exp, buf.String())
	}

	sim.exits["B"] = 0
	p.schedule()
	p.schedule()
	if waiting != 1 {
		t.Fatalf("expected idle to wait for interrupts once all tasks exited; waited %d times", waiting)
	}
}

func TestProcessorTickWithoutCurrent(t *testing.T) {
	defer restoreProcessorHooks()

	p, sim := setupProcessor(t)
	sim.add("A")

	// Ticks outside of a running thread do not consume its time slice.
	for i := 0; i < 2*TicksPerTimeSlice; i++ {
		p.Tick()
	}
	if len(sim.visited) != 0 {
		t.Fatal("expected no switches without a current thread")
	}
}

func TestProcessorMisuse(t *testing.T) {
	defer restoreProcessorHooks()

	var p Processor
	if _, err := p.Push(BootThread()); err != errProcessorNotReady {
		t.Fatalf("expected errProcessorNotReady; got %v", err)
	}
	if err := expectPanic(t, p.Run); err != errProcessorNotReady {
		t.Fatalf("expected errProcessorNotReady; got %v", err)
	}

	p.Init(NewThreadPool(1, NewRoundRobin(1)), BootThread())
	if err := expectPanic(t, func() { p.Exit(0) }); err != errNoCurrentThread {
		t.Fatalf("expected errNoCurrentThread; got %v", err)
	}
}

func TestProcessorRun(t *testing.T) {
	defer restoreProcessorHooks()

	var p Processor
	idle := NewThread().Create(FuncPC(testEntry))
	p.Init(NewThreadPool(1, NewRoundRobin(1)), idle)

	var switchedTo *Context
	switchContextFn = func(_, to *Context) { switchedTo = to }

	p.Run()
	if switchedTo != &idle.context {
		t.Fatal("expected Run to switch to the idle thread")
	}
}

func TestInitAndSpawn(t *testing.T) {
	defer func() {
		restoreProcessorHooks()
		CPU = Processor{}
	}()

	var tickHandler func()
	setTickHandlerFn = func(fn func()) { tickHandler = fn }

	Init()

	if tickHandler == nil {
		t.Fatal("expected the processor to be registered as the tick handler")
	}

	content := CPU.idle.context.content()
	if content.TF.SEPC != FuncPC(idleMain) {
		t.Error("expected the idle thread to start in idleMain")
	}
	if content.TF.X[regA0] != uintptr(unsafe.Pointer(&CPU)) {
		t.Error("expected the idle thread to receive the processor as its argument")
	}

	tid, err := Spawn(FuncPC(testEntry), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if status, _ := CPU.pool.Status(tid); status != StatusReady {
		t.Fatalf("expected spawned thread to be ready; got %s", status)
	}

	if _, err := Spawn(FuncPC(testEntry), 1, 2, 3, 4, 5, 6, 7, 8, 9); err != errTooManyArgs {
		t.Fatalf("expected errTooManyArgs; got %v", err)
	}
}

func TestSelfTest(t *testing.T) {
	defer restoreProcessorHooks()

	var (
		buf      bytes.Buffer
		switches int
		boot     *Context
	)
	kfmt.SetOutputSink(&buf)
	defer kfmt.SetOutputSink(nil)

	switchContextFn = func(from, _ *Context) {
		if boot == nil {
			boot = from
		}
		if from != boot {
			t.Error("expected every switch to start from the boot thread")
		}
		switches++
	}

	SelfTest()

	if exp := 2 + pingPongRounds; switches != exp {
		t.Fatalf("expected %d switches; got %d", exp, switches)
	}
	if !strings.Contains(buf.String(), "pong4 \n[thread] switch back-and-forth test passed\n") {
		t.Fatalf("unexpected self-test output:\n%s", buf.String())
	}
}
