package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/eapache/queue"
	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/pool"
)

var (
	benchObjectSize int
	benchPerPage    int
	benchPad        int
	benchAlign      int
	benchHeader     string
	benchExtra      int
	benchMaxPages   int
	benchIters      int
	benchLive       int
	benchDebug      bool
	benchPass       bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run an allocate/free workload and report pool statistics",
	Long: `Drives a pool through an allocate/free workload that keeps a bounded
window of live blocks: each iteration allocates one block and, once the window
is full, frees the oldest. Prints the pool's statistics when the run finishes.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchObjectSize, "object-size", 64, "Object size in bytes")
	benchCmd.Flags().IntVar(&benchPerPage, "per-page", 64, "Objects per page")
	benchCmd.Flags().IntVar(&benchPad, "pad", 0, "Guard pad bytes on each side of the data region")
	benchCmd.Flags().IntVar(&benchAlign, "align", 0, "Alignment boundary (0 disables)")
	benchCmd.Flags().StringVar(&benchHeader, "header", "none", "Header kind: none, basic, extended, external")
	benchCmd.Flags().IntVar(&benchExtra, "extra", 0, "Extra user bytes for extended headers")
	benchCmd.Flags().IntVar(&benchMaxPages, "max-pages", 0, "Page limit (0 = unbounded)")
	benchCmd.Flags().IntVar(&benchIters, "iters", 100000, "Number of allocations to perform")
	benchCmd.Flags().IntVar(&benchLive, "live", 256, "Maximum live blocks at any point")
	benchCmd.Flags().BoolVar(&benchDebug, "debug", false, "Enable debug stamping and validation")
	benchCmd.Flags().BoolVar(&benchPass, "passthrough", false, "Bypass pool pages and use the runtime heap")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	hdr, err := parseHeaderKind(benchHeader, benchExtra)
	if err != nil {
		return err
	}
	if benchLive < 1 {
		return errors.New("--live must be at least 1")
	}

	cfg := pool.Config{
		ObjectsPerPage: benchPerPage,
		MaxPages:       benchMaxPages,
		PadBytes:       benchPad,
		Alignment:      benchAlign,
		Header:         hdr,
		Debug:          benchDebug,
		PassThrough:    benchPass,
	}
	p, err := pool.New(benchObjectSize, cfg)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	defer p.Close()

	logger.Debug("workload starting",
		"iters", benchIters,
		"live", benchLive,
		"page_size", p.Layout().PageSize)

	// Oldest-first window of live refs.
	live := queue.New()
	start := time.Now()
	for i := 0; i < benchIters; i++ {
		ref, _, err := p.Allocate("")
		if err != nil {
			return fmt.Errorf("allocate %d: %w", i, err)
		}
		live.Add(ref)
		if live.Length() > benchLive {
			oldest := live.Peek().(pool.Ref)
			live.Remove()
			if err := p.Free(oldest); err != nil {
				return fmt.Errorf("free: %w", err)
			}
		}
	}
	elapsed := time.Since(start)

	// Drain the window so the run ends with everything returned.
	for live.Length() > 0 {
		ref := live.Peek().(pool.Ref)
		live.Remove()
		if err := p.Free(ref); err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	}
	reclaimed := p.FreeEmptyPages()

	stats := p.Stats()
	logger.Debug("workload finished",
		"elapsed", elapsed,
		"reclaimed_pages", reclaimed)

	if jsonOut {
		return printJSON(struct {
			pool.Stats
			Reclaimed int
			ElapsedNS int64
		}{stats, reclaimed, elapsed.Nanoseconds()})
	}

	fmt.Printf("Iterations:      %d in %s\n", benchIters, elapsed)
	fmt.Printf("Allocations:     %d\n", stats.Allocations)
	fmt.Printf("Deallocations:   %d\n", stats.Deallocations)
	fmt.Printf("Most objects:    %d\n", stats.MostObjects)
	fmt.Printf("Pages in use:    %d\n", stats.PagesInUse)
	fmt.Printf("Pages reclaimed: %d\n", reclaimed)
	fmt.Printf("Page size:       %d\n", stats.PageSize)
	return nil
}
