package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"rvkern/kernel/thread"
)

// schedCmd implements subcommands.Command for the "sched" command.
type schedCmd struct {
	profile string
	tasks   int
	slices  int
}

// Name implements subcommands.Command.
func (*schedCmd) Name() string { return "sched" }

// Synopsis implements subcommands.Command.
func (*schedCmd) Synopsis() string {
	return "simulate the round-robin schedule of CPU bound kernel threads"
}

// Usage implements subcommands.Command.
func (*schedCmd) Usage() string {
	return "sched [-profile board.toml] [-tasks N] [-slices N]\n"
}

// SetFlags implements subcommands.Command.
func (c *schedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "", "board profile (TOML)")
	f.IntVar(&c.tasks, "tasks", 3, "number of threads")
	f.IntVar(&c.slices, "slices", 9, "number of time slices to simulate")
}

// Execute implements subcommands.Command.
func (c *schedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.tasks < 1 || c.tasks > thread.MaxTasks || c.slices < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	p, err := loadProfile(c.profile)
	if err != nil {
		logrus.WithError(err).Error("invalid profile")
		return subcommands.ExitFailure
	}

	logrus.WithFields(logrus.Fields{
		"tasks":      c.tasks,
		"time_slice": p.TimeSlice,
	}).Debug("simulating")

	printSchedule(os.Stdout, p, simulate(thread.NewRoundRobin(p.TimeSlice), c.tasks, c.slices))
	return subcommands.ExitSuccess
}

// slice is a time slice handed to a task.
type slice struct {
	tid   thread.TaskID
	ticks int
}

// simulate pushes tasks to s and runs them for the given number of slices.
// Tasks never block or exit, so every slice runs until the scheduler reports
// that it is used up.
func simulate(s thread.Scheduler, tasks, slices int) []slice {
	for tid := 0; tid < tasks; tid++ {
		s.Push(thread.TaskID(tid))
	}

	var out []slice
	for i := 0; i < slices; i++ {
		tid, ok := s.Pick()
		if !ok {
			break
		}

		ticks := 1
		for !s.Tick() {
			ticks++
		}
		out = append(out, slice{tid: tid, ticks: ticks})
		s.Yield(tid)
	}
	return out
}

func printSchedule(w io.Writer, p profile, slices []slice) {
	tickDuration := time.Duration(p.Timebase) * time.Second / time.Duration(p.TimeFreq)

	var elapsed time.Duration
	for _, s := range slices {
		fmt.Fprintf(w, "%10v task %d runs for %d ticks\n", elapsed, int(s.tid), s.ticks)
		elapsed += time.Duration(s.ticks) * tickDuration
	}
	fmt.Fprintf(w, "%10v end of simulation\n", elapsed)
}
