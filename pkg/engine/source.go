package engine

import (
	"context"
	"fmt"

	"github.com/edp1096/audio-spice/pkg/topology"
)

// TopologySource supplies a fresh topology snapshot for each computed
// analysis. Board extraction lives behind it.
type TopologySource interface {
	Snapshot(ctx context.Context) (*topology.Topology, error)
}

// TopologySourceFunc adapts a function to TopologySource.
type TopologySourceFunc func(ctx context.Context) (*topology.Topology, error)

func (f TopologySourceFunc) Snapshot(ctx context.Context) (*topology.Topology, error) {
	return f(ctx)
}

// StaticTopology serves the same snapshot every time.
type StaticTopology struct {
	Topology *topology.Topology
}

func (s StaticTopology) Snapshot(context.Context) (*topology.Topology, error) {
	return s.Topology, nil
}

// snapshot calls src and turns a panic into an error so a faulty source
// fails one run instead of the caller.
func snapshot(ctx context.Context, src TopologySource) (topo *topology.Topology, err error) {
	defer func() {
		if r := recover(); r != nil {
			topo, err = nil, fmt.Errorf("topology snapshot panic: %v", r)
		}
	}()
	topo, err = src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("topology snapshot: %w", err)
	}
	return topo, nil
}
