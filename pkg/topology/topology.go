package topology

import (
	"math"
	"sort"
	"strings"
)

type NetRole int

const (
	RoleUnknown NetRole = iota
	RolePower
	RoleGround
	RoleSignal
)

func (r NetRole) String() string {
	switch r {
	case RolePower:
		return "power"
	case RoleGround:
		return "ground"
	case RoleSignal:
		return "signal"
	default:
		return "unknown"
	}
}

var (
	powerPrefixes  = []string{"VCC", "VDD", "VIN", "VBAT", "V+", "PWR", "+"}
	groundPrefixes = []string{"GND", "AGND", "DGND", "PGND", "VSS", "GROUND"}
)

// Classify derives the role of a net from its name.
func Classify(name string) NetRole {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case upper == "":
		return RoleUnknown
	case upper == "0":
		return RoleGround
	case strings.HasPrefix(upper, "UNCONNECTED-"), strings.HasPrefix(upper, "NET-("):
		return RoleUnknown
	}

	for _, p := range groundPrefixes {
		if strings.HasPrefix(upper, p) {
			return RoleGround
		}
	}
	for _, p := range powerPrefixes {
		if strings.HasPrefix(upper, p) {
			return RolePower
		}
	}
	return RoleSignal
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance in the unit of the coordinates (mm).
func (p Point) Distance(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

type Pad struct {
	Number   string `json:"number"`
	Net      string `json:"net"`
	Position Point  `json:"position"`
}

type Component struct {
	Reference   string  `json:"reference"`
	Value       string  `json:"value"`
	Footprint   string  `json:"footprint"`
	Position    Point   `json:"position"`
	Orientation float64 `json:"orientation"`
	Layer       string  `json:"layer"`
	Pads        []Pad   `json:"pads"`
}

// Track is a straight copper segment. Coordinates and width are in mm.
type Track struct {
	Start Point   `json:"start"`
	End   Point   `json:"end"`
	Width float64 `json:"width"`
	Layer string  `json:"layer"`
}

func (t Track) Length() float64 { return t.Start.Distance(t.End) }

type Via struct {
	Position Point   `json:"position"`
	Diameter float64 `json:"diameter"`
	Drill    float64 `json:"drill"`
}

type Net struct {
	Name   string  `json:"name"`
	Role   NetRole `json:"-"`
	Tracks []Track `json:"tracks"`
	Vias   []Via   `json:"vias"`
}

type BoardInfo struct {
	Width             float64  `json:"width"`
	Height            float64  `json:"height"`
	CopperLayers      []string `json:"copperLayers"`
	CopperThicknessUM float64  `json:"copperThicknessUm"`
}

// Topology is an immutable snapshot of the circuit handed to one analysis run.
type Topology struct {
	Components map[string]Component
	Nets       map[string]Net
	Board      BoardInfo

	netNames []string
}

// New ingests components, nets and board info. Net roles are classified once
// here, and nets referenced only by pads are resolved into empty nets.
func New(components map[string]Component, nets map[string]Net, board BoardInfo) *Topology {
	t := &Topology{
		Components: make(map[string]Component, len(components)),
		Nets:       make(map[string]Net, len(nets)),
		Board:      board,
	}

	for ref, c := range components {
		if c.Reference == "" {
			c.Reference = ref
		}
		t.Components[ref] = c
	}

	for name, n := range nets {
		n.Name = name
		n.Role = Classify(name)
		t.Nets[name] = n
	}

	for _, c := range t.Components {
		for _, pad := range c.Pads {
			if pad.Net == "" {
				continue
			}
			if _, exists := t.Nets[pad.Net]; !exists {
				t.Nets[pad.Net] = Net{Name: pad.Net, Role: Classify(pad.Net)}
			}
		}
	}

	t.netNames = make([]string, 0, len(t.Nets))
	for name := range t.Nets {
		t.netNames = append(t.netNames, name)
	}
	sort.Strings(t.netNames)

	return t
}

// Empty reports whether there is nothing to analyse.
func (t *Topology) Empty() bool {
	return t == nil || len(t.Components) == 0
}

// NetNames returns every net name in ascending order.
func (t *Topology) NetNames() []string {
	if t == nil {
		return nil
	}
	src := t.names()
	names := make([]string, len(src))
	copy(names, src)
	return names
}

func (t *Topology) names() []string {
	if t.netNames != nil || len(t.Nets) == 0 {
		return t.netNames
	}
	names := make([]string, 0, len(t.Nets))
	for name := range t.Nets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ingested returns t when it was built by New or Load. A topology assembled
// as a struct literal is passed through New so that net roles and pad nets
// are resolved before any analysis reads them.
func (t *Topology) Ingested() *Topology {
	if t == nil || t.netNames != nil {
		return t
	}
	return New(t.Components, t.Nets, t.Board)
}

// lookup returns the named net with its name and role filled in, also for
// topologies that skipped New.
func (t *Topology) lookup(name string) (Net, bool) {
	n, ok := t.Nets[name]
	if t.netNames == nil || n.Name == "" {
		n.Name, n.Role = name, Classify(name)
	}
	return n, ok
}

// Net returns the named net. An unknown name yields an empty net with a
// role classified from the name.
func (t *Topology) Net(name string) Net {
	if t == nil {
		return Net{Name: name, Role: Classify(name)}
	}
	n, _ := t.lookup(name)
	return n
}

// AnalysedNets returns all non-ground nets in name order.
func (t *Topology) AnalysedNets() []Net {
	if t == nil {
		return nil
	}
	names := t.names()
	nets := make([]Net, 0, len(names))
	for _, name := range names {
		n, _ := t.lookup(name)
		if n.Role == RoleGround {
			continue
		}
		nets = append(nets, n)
	}
	return nets
}

// CopperThickness returns the copper thickness in metres.
func (b BoardInfo) CopperThickness() float64 {
	if b.CopperThicknessUM > 0 {
		return b.CopperThicknessUM * 1e-6
	}
	return 35e-6
}

type CircuitStats struct {
	Components       int     `json:"components"`
	Nets             int     `json:"nets"`
	PowerNets        int     `json:"powerNets"`
	GroundNets       int     `json:"groundNets"`
	SignalNets       int     `json:"signalNets"`
	UnknownNets      int     `json:"unknownNets"`
	Tracks           int     `json:"tracks"`
	Vias             int     `json:"vias"`
	TotalTrackLength float64 `json:"totalTrackLength"`
}

func (t *Topology) Stats() CircuitStats {
	if t == nil {
		return CircuitStats{}
	}

	stats := CircuitStats{
		Components: len(t.Components),
		Nets:       len(t.Nets),
	}
	for _, name := range t.names() {
		n, _ := t.lookup(name)
		switch n.Role {
		case RolePower:
			stats.PowerNets++
		case RoleGround:
			stats.GroundNets++
		case RoleSignal:
			stats.SignalNets++
		default:
			stats.UnknownNets++
		}
		stats.Tracks += len(n.Tracks)
		stats.Vias += len(n.Vias)
		for _, tr := range n.Tracks {
			stats.TotalTrackLength += tr.Length()
		}
	}
	return stats
}
