package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/device"
	"github.com/edp1096/audio-spice/pkg/matrix"
	"github.com/edp1096/audio-spice/pkg/topology"
)

// Circuit is the resistive network formed by the copper tracks of one net.
// Node 0 sits at the start of the first track and is the reference.
type Circuit struct {
	name      string
	nodeMap   map[string]int
	points    []topology.Point // points[i] is node i
	devices   []device.Device
	numNodes  int
	thickness float64
	matrix    *matrix.CircuitMatrix
	Status    *device.CircuitStatus
}

func New(name string, thickness float64) *Circuit {
	if thickness <= 0 {
		thickness = consts.CopperThicknessUM * 1e-6
	}
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		devices:   make([]device.Device, 0),
		thickness: thickness,
		Status:    &device.CircuitStatus{Temp: consts.TNOM},
	}
}

// node returns the index of the node at p, creating one unless an existing
// node lies within the merge distance.
func (c *Circuit) node(p topology.Point) int {
	for i, q := range c.points {
		if p.Distance(q) <= consts.NodeMergeMM {
			return i
		}
	}
	idx := len(c.points)
	c.points = append(c.points, p)
	c.nodeMap[nodeName(idx)] = idx
	return idx
}

func nodeName(idx int) string {
	return fmt.Sprintf("n%d", idx)
}

// AssignNodeMap merges coincident track endpoints into shared nodes.
func (c *Circuit) AssignNodeMap(tracks []topology.Track) {
	for _, t := range tracks {
		c.node(t.Start)
		c.node(t.End)
	}
	c.numNodes = len(c.points) - 1 // excluding the reference
	if c.numNodes < 0 {
		c.numNodes = 0
	}
}

func (c *Circuit) CreateMatrix() error {
	if c.numNodes == 0 {
		return fmt.Errorf("circuit %s: no nodes besides the reference", c.name)
	}
	m, err := matrix.NewMatrix(c.numNodes)
	if err != nil {
		return fmt.Errorf("circuit %s: %w", c.name, err)
	}
	c.matrix = m
	return nil
}

// SetupDevices creates one resistor per track segment. Tracks without a width
// use the default width.
func (c *Circuit) SetupDevices(tracks []topology.Track) error {
	for i, t := range tracks {
		width := t.Width
		if width <= 0 {
			width = consts.DefaultTrackWidthMM
		}

		n1, n2 := c.node(t.Start), c.node(t.End)
		dev, err := device.NewTrackSegment(fmt.Sprintf("T%d", i+1), []string{nodeName(n1), nodeName(n2)},
			t.Length()*1e-3, width*1e-3, c.thickness)
		if err != nil {
			return fmt.Errorf("creating device for track %d: %w", i+1, err)
		}
		dev.SetNodes([]int{n1, n2})
		c.devices = append(c.devices, dev)
	}
	return nil
}

func (c *Circuit) Stamp(status *device.CircuitStatus) error {
	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	if status.Gmin > 0 {
		c.matrix.LoadGmin(status.Gmin)
	}
	return nil
}

// FarthestNode returns the node with the largest straight-line distance from
// the reference.
func (c *Circuit) FarthestNode() int {
	far, best := 0, -1.0
	for i := 1; i < len(c.points); i++ {
		if d := c.points[i].Distance(c.points[0]); d > best {
			far, best = i, d
		}
	}
	return far
}

// Solve injects current amperes into node and solves for every node voltage.
func (c *Circuit) Solve(node int, current float64) error {
	if c.matrix == nil {
		return fmt.Errorf("circuit %s: matrix not created", c.name)
	}
	c.matrix.Clear()
	c.matrix.SetupElements()

	if err := c.Stamp(c.Status); err != nil {
		return err
	}
	src := device.NewDCCurrentSource("I1", []string{nodeName(node), nodeName(0)}, current)
	src.SetNodes([]int{node, 0})
	if err := src.Stamp(c.matrix, c.Status); err != nil {
		return err
	}

	if err := c.matrix.Solve(); err != nil {
		return fmt.Errorf("circuit %s: %w", c.name, err)
	}
	for i := 1; i <= c.numNodes; i++ {
		if v := c.GetNodeVoltage(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("circuit %s: node %d voltage is not finite", c.name, i)
		}
	}
	return nil
}

func (c *Circuit) GetNodeVoltage(nodeIdx int) float64 {
	if nodeIdx <= 0 || c.matrix == nil { // reference or invalid node
		return 0
	}

	solution := c.matrix.Solution()
	if nodeIdx >= len(solution) {
		return 0
	}
	return solution[nodeIdx]
}

// SeriesResistance is the sum of every segment resistance.
func (c *Circuit) SeriesResistance() float64 {
	total := 0.0
	for _, dev := range c.devices {
		if r, ok := dev.(*device.Resistor); ok {
			total += r.Resistance(c.Status.Temp)
		}
	}
	return total
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
		c.matrix = nil
	}
}

// TrackResistance returns the resistance of a net's copper between the start
// of its first track and the node farthest from it, at temp kelvin. A net
// whose tracks do not form a connected network reports the series sum of its
// segments instead. thickness is the copper thickness in metres.
func TrackResistance(name string, tracks []topology.Track, thickness, temp float64) (float64, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	c := New(name, thickness)
	defer c.Destroy()
	if temp > 0 {
		c.Status.Temp = temp
	}

	c.AssignNodeMap(tracks)
	if err := c.SetupDevices(tracks); err != nil {
		return 0, err
	}
	if c.GetNumNodes() == 0 {
		return 0, nil
	}

	if err := c.CreateMatrix(); err != nil {
		return c.SeriesResistance(), nil
	}
	far := c.FarthestNode()
	if err := c.Solve(far, 1.0); err != nil {
		return c.SeriesResistance(), nil
	}
	// 1 A injected, so the node voltage is the resistance
	return c.GetNodeVoltage(far), nil
}
