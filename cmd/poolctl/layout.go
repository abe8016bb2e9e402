package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/pool"
)

var (
	layoutObjectSize int
	layoutPerPage    int
	layoutPad        int
	layoutAlign      int
	layoutHeader     string
	layoutExtra      int
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compute the page layout for a pool configuration",
	Long: `Computes every byte offset a pool with the given configuration would
use: alignment gaps, slot stride, header and data offsets, and total page size.
No pages are allocated.`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().IntVar(&layoutObjectSize, "object-size", 16, "Object size in bytes")
	layoutCmd.Flags().IntVar(&layoutPerPage, "per-page", 4, "Objects per page")
	layoutCmd.Flags().IntVar(&layoutPad, "pad", 0, "Guard pad bytes on each side of the data region")
	layoutCmd.Flags().IntVar(&layoutAlign, "align", 0, "Alignment boundary (0 disables)")
	layoutCmd.Flags().StringVar(&layoutHeader, "header", "none", "Header kind: none, basic, extended, external")
	layoutCmd.Flags().IntVar(&layoutExtra, "extra", 0, "Extra user bytes for extended headers")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	hdr, err := parseHeaderKind(layoutHeader, layoutExtra)
	if err != nil {
		return err
	}

	cfg := pool.Config{
		ObjectsPerPage: layoutPerPage,
		PadBytes:       layoutPad,
		Alignment:      layoutAlign,
		Header:         hdr,
	}
	p, err := pool.New(layoutObjectSize, cfg)
	if err != nil {
		return fmt.Errorf("computing layout: %w", err)
	}
	defer p.Close()

	lay := p.Layout()
	logger.Debug("layout computed",
		"object_size", lay.ObjectSize,
		"page_size", lay.PageSize)

	if jsonOut {
		return printJSON(lay)
	}

	fmt.Printf("Object size:      %d\n", lay.ObjectSize)
	fmt.Printf("Objects per page: %d\n", lay.ObjectsPerPage)
	fmt.Printf("Header size:      %d\n", lay.HeaderSize)
	fmt.Printf("Pad bytes:        %d\n", lay.PadBytes)
	fmt.Printf("Left align:       %d\n", lay.LeftAlign)
	fmt.Printf("Inter align:      %d\n", lay.InterAlign)
	fmt.Printf("Stride:           %d\n", lay.Stride)
	fmt.Printf("First slot at:    %d\n", lay.FirstSlot)
	fmt.Printf("First data at:    %d\n", lay.FirstData)
	fmt.Printf("Page size:        %d\n", lay.PageSize)
	return nil
}
