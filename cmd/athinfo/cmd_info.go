package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-athenak/athenak"
)

var infoCmd = &cobra.Command{
	Use:   "info [snapshot]",
	Short: "Print snapshot metadata",
	Long: `Prints the snapshot's field list, float widths, ghost depth, domain
bounds and meshblock count without reading any cell data.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	paths, err := resolveInputs(args[0])
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := printInfo(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func printInfo(path string) error {
	f, err := athenak.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := f.Header()
	numBlocks, err := f.NumBlocks()
	if err != nil {
		return err
	}
	logger.Debug("scanned snapshot", zap.String("path", path), zap.Int("blocks", numBlocks))

	fmt.Printf("%s\n", path)
	fmt.Printf("  variables:     %s\n", strings.Join(h.FieldNames, " "))
	fmt.Printf("  float widths:  location=%d variable=%d\n", h.LocationSize, h.VariableSize)
	fmt.Printf("  ghost depth:   %d\n", h.NGhost)
	fmt.Printf("  meshblocks:    %d\n", numBlocks)

	for _, axis := range []athenak.Axis{athenak.AxisX, athenak.AxisY, athenak.AxisZ} {
		min, errMin := h.DomainMin(axis)
		max, errMax := h.DomainMax(axis)
		if errMin != nil || errMax != nil {
			continue
		}
		fmt.Printf("  domain %s:      [%g, %g]\n", axis, min, max)
	}
	return nil
}
