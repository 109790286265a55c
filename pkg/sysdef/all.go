package sysdef

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Report holds the results of a full validation, indexed like
// Nodes and Buses
type Report struct {
	Nodes []NodeCheckResult
	Buses []BusCheckResult
}

// HasError returns true if any node or bus has an error
func (r Report) HasError() bool {
	for i := range r.Nodes {
		if r.Nodes[i].HasError() {
			return true
		}
	}
	for i := range r.Buses {
		if r.Buses[i].HasError() {
			return true
		}
	}
	return false
}

// CheckAll runs every node and bus check concurrently.
// Checks only read the system definition, it must not be modified while
// CheckAll runs. Validate a [SystemDefinition.Clone] to keep editing.
func (sd *SystemDefinition) CheckAll(ctx context.Context) (Report, error) {
	report := Report{
		Nodes: make([]NodeCheckResult, len(sd.Nodes)),
		Buses: make([]BusCheckResult, len(sd.Buses)),
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range sd.Nodes {
		nodeIndex := uint32(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := sd.CheckErrorNode(nodeIndex, CheckAllNode)
			if err != nil {
				return err
			}
			report.Nodes[nodeIndex] = result
			return nil
		})
	}
	for i := range sd.Buses {
		busIndex := uint32(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := sd.CheckErrorBus(busIndex, CheckAllBus)
			if err != nil {
				return err
			}
			report.Buses[busIndex] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sd.logger.Errorf("[SYSDEF] validation aborted : %v", err)
		return Report{}, err
	}
	return report, nil
}
