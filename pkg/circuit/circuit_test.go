package circuit

import (
	"math"
	"testing"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/topology"
)

const thickness = 35e-6

func segment(x1, y1, x2, y2, width float64) topology.Track {
	return topology.Track{
		Start: topology.Point{X: x1, Y: y1},
		End:   topology.Point{X: x2, Y: y2},
		Width: width,
		Layer: "F.Cu",
	}
}

// resistance of a 10 mm x 1 mm copper segment at nominal temperature
var unitR = consts.CopperResistivity * 10e-3 / (1e-3 * thickness)

func TestTrackResistanceSeries(t *testing.T) {
	tracks := []topology.Track{
		segment(0, 0, 10, 0, 1),
		segment(10, 0, 20, 0, 1),
	}

	got, err := TrackResistance("OUT", tracks, thickness, consts.TNOM)
	if err != nil {
		t.Fatalf("TrackResistance: %v", err)
	}
	if math.Abs(got-2*unitR)/unitR > 1e-9 {
		t.Fatalf("series resistance = %v, want %v", got, 2*unitR)
	}
}

func TestTrackResistanceParallel(t *testing.T) {
	tracks := []topology.Track{
		segment(0, 0, 10, 0, 1),
		segment(0, 0, 10, 0, 1),
	}

	got, err := TrackResistance("OUT", tracks, thickness, consts.TNOM)
	if err != nil {
		t.Fatalf("TrackResistance: %v", err)
	}
	if math.Abs(got-unitR/2)/unitR > 1e-9 {
		t.Fatalf("parallel resistance = %v, want %v", got, unitR/2)
	}
}

func TestTrackResistanceMergesNearbyEndpoints(t *testing.T) {
	tracks := []topology.Track{
		segment(0, 0, 10, 0, 1),
		segment(10.0000005, 0, 20, 0, 1),
	}

	c := New("OUT", thickness)
	c.AssignNodeMap(tracks)
	if c.GetNumNodes() != 2 {
		t.Fatalf("expected 2 non-reference nodes, got %d", c.GetNumNodes())
	}
	if c.FarthestNode() != 2 {
		t.Fatalf("farthest node = %d, want 2", c.FarthestNode())
	}
}

func TestTrackResistanceDisconnectedFallsBackToSeries(t *testing.T) {
	tracks := []topology.Track{
		segment(0, 0, 10, 0, 1),
		segment(50, 50, 60, 50, 1),
	}

	got, err := TrackResistance("OUT", tracks, thickness, consts.TNOM)
	if err != nil {
		t.Fatalf("TrackResistance: %v", err)
	}
	if math.Abs(got-2*unitR)/unitR > 1e-9 {
		t.Fatalf("fallback resistance = %v, want %v", got, 2*unitR)
	}
}

func TestTrackResistanceTemperature(t *testing.T) {
	tracks := []topology.Track{segment(0, 0, 10, 0, 1)}

	hot, err := TrackResistance("OUT", tracks, thickness, consts.TNOM+100)
	if err != nil {
		t.Fatalf("TrackResistance: %v", err)
	}
	want := unitR * (1 + consts.CopperTempCoeff*100)
	if math.Abs(hot-want)/want > 1e-9 {
		t.Fatalf("hot resistance = %v, want %v", hot, want)
	}
}

func TestTrackResistanceEmpty(t *testing.T) {
	got, err := TrackResistance("OUT", nil, thickness, consts.TNOM)
	if err != nil || got != 0 {
		t.Fatalf("empty net = %v, %v; want 0, nil", got, err)
	}

	// a zero-length track collapses onto the reference node
	got, err = TrackResistance("OUT", []topology.Track{segment(1, 1, 1, 1, 1)}, thickness, consts.TNOM)
	if err != nil || got != 0 {
		t.Fatalf("zero-length net = %v, %v; want 0, nil", got, err)
	}
}

func TestSeriesResistanceDefaultsWidth(t *testing.T) {
	c := New("OUT", 0)
	tracks := []topology.Track{segment(0, 0, 10, 0, 0)}
	c.AssignNodeMap(tracks)
	if err := c.SetupDevices(tracks); err != nil {
		t.Fatalf("SetupDevices: %v", err)
	}

	want := consts.CopperResistivity * 10e-3 / (consts.DefaultTrackWidthMM * 1e-3 * consts.CopperThicknessUM * 1e-6)
	if got := c.SeriesResistance(); math.Abs(got-want)/want > 1e-12 {
		t.Fatalf("series resistance = %v, want %v", got, want)
	}
	if len(c.GetDevices()) != 1 || c.GetDevices()[0].GetType() != "R" {
		t.Fatalf("expected one resistor, got %v", c.GetDevices())
	}
}
