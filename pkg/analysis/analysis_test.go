package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/response"
	"github.com/edp1096/audio-spice/pkg/topology"
)

func track(x1, y1, x2, y2, width float64) topology.Track {
	return topology.Track{
		Start: topology.Point{X: x1, Y: y1},
		End:   topology.Point{X: x2, Y: y2},
		Width: width,
		Layer: "F.Cu",
	}
}

func pad(number, net string) topology.Pad {
	return topology.Pad{Number: number, Net: net}
}

func amplifierTopology() *topology.Topology {
	components := map[string]topology.Component{
		"U1":  {Value: "OPAMP", Pads: []topology.Pad{pad("1", "OUT"), pad("4", "GND"), pad("8", "VCC"), pad("3", "AUDIO_IN")}},
		"R1":  {Value: "10k", Pads: []topology.Pad{pad("1", "OUT"), pad("2", "GND")}},
		"C1":  {Value: "100n", Pads: []topology.Pad{pad("1", "VCC"), pad("2", "GND")}},
		"VR1": {Value: "7805", Pads: []topology.Pad{pad("1", "VCC")}},
		"J1":  {Value: "CONN", Pads: []topology.Pad{pad("1", "AUDIO_IN")}},
	}
	nets := map[string]topology.Net{
		"OUT": {Tracks: []topology.Track{track(0, 0, 10, 0, 0.25)}},
		"GND": {Tracks: []topology.Track{track(0, 5, 20, 5, 1)}},
		"VCC": {Tracks: []topology.Track{track(0, 10, 20, 10, 0.5)}},
	}
	return topology.New(components, nets, topology.BoardInfo{Width: 50, Height: 30})
}

func singleNetTopology(net string) *topology.Topology {
	return topology.New(
		map[string]topology.Component{"R1": {Value: "1k", Pads: []topology.Pad{pad("1", net)}}},
		map[string]topology.Net{net: {}},
		topology.BoardInfo{},
	)
}

func defaultRequests() []Request {
	return []Request{DefaultDC(), DefaultAC(), DefaultTransient(), DefaultNoise(), DefaultFourier()}
}

func TestEmptyTopologyFailsEveryKind(t *testing.T) {
	empty := topology.New(nil, nil, topology.BoardInfo{})
	for _, req := range defaultRequests() {
		for _, topo := range []*topology.Topology{empty, nil} {
			res := Run(context.Background(), req, topo, Options{})
			if res.Success {
				t.Fatalf("%s: expected failure on empty topology", req.Kind())
			}
			if res.ErrorMessage == "" || !strings.Contains(res.ErrorMessage, ErrNoTopology.Error()) {
				t.Fatalf("%s: unexpected error message %q", req.Kind(), res.ErrorMessage)
			}
			if res.Data != nil {
				t.Fatalf("%s: failed result carries data", req.Kind())
			}
			if res.Kind != req.Kind() {
				t.Fatalf("result kind = %s, want %s", res.Kind, req.Kind())
			}
		}
	}
}

func TestACFlatWithinAudioBand(t *testing.T) {
	req := ACRequest{StartFrequency: 20, StopFrequency: 20000, NumPoints: 50, Source: "V1", Amplitude: 1, HighPrecision: false}
	res := Run(context.Background(), req, singleNetTopology("OUT"), Options{})
	if !res.Success {
		t.Fatalf("AC failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*ACData)
	mag := data.MagnitudeResponse["OUT"]
	if len(mag) != 50 || len(data.Frequencies) != 50 {
		t.Fatalf("got %d magnitude samples over %d frequencies, want 50", len(mag), len(data.Frequencies))
	}
	for i, m := range mag {
		if m != 1.0 {
			t.Fatalf("magnitude[%d] = %v, want 1.0", i, m)
		}
	}
	if data.SourceAnalysed {
		t.Fatalf("V1 is not a net of the topology")
	}
	tf := data.TransferFunction["OUT"]
	for i := range tf.Magnitude {
		if tf.Magnitude[i] != 1 || tf.Phase[i] != 0 {
			t.Fatalf("transfer function against an ideal source should be unity, got %v/%v", tf.Magnitude[i], tf.Phase[i])
		}
	}
	if data.Overall.Bandwidth < 0 || data.Overall.LowFreq3dB > data.Overall.HighFreq3dB {
		t.Fatalf("invalid overall bandwidth %+v", data.Overall)
	}
}

func TestACSeriesAlignment(t *testing.T) {
	res := Run(context.Background(), DefaultAC(), amplifierTopology(), Options{Workers: 3})
	if !res.Success {
		t.Fatalf("AC failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*ACData)
	n := len(data.Frequencies)
	if n == 0 || n > 200 {
		t.Fatalf("unexpected frequency count %d", n)
	}
	if _, ok := data.MagnitudeResponse["GND"]; ok {
		t.Fatalf("ground nets must not be analysed")
	}
	for _, name := range []string{"AUDIO_IN", "OUT", "VCC"} {
		if len(data.MagnitudeResponse[name]) != n || len(data.PhaseResponse[name]) != n || len(data.Impedance[name]) != n {
			t.Fatalf("%s: series not aligned with %d frequencies", name, n)
		}
		if len(data.Bandwidth[name].GroupDelay) != n {
			t.Fatalf("%s: high precision run should include group delay", name)
		}
	}
	if data.Impedance["VCC"][0] != 0.1 || data.Impedance["OUT"][0] != 50 {
		t.Fatalf("unexpected impedances VCC=%v OUT=%v", data.Impedance["VCC"][0], data.Impedance["OUT"][0])
	}
	if data.Precision.Points != n {
		t.Fatalf("precision points = %d, want %d", data.Precision.Points, n)
	}
}

func TestACTransferAgainstAnalysedSource(t *testing.T) {
	req := DefaultAC()
	req.Source = "AUDIO_IN"
	req.StopFrequency = 5e6
	res := Run(context.Background(), req, amplifierTopology(), Options{})
	if !res.Success {
		t.Fatalf("AC failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*ACData)
	if !data.SourceAnalysed {
		t.Fatalf("AUDIO_IN should be used as the reference")
	}
	if _, ok := data.TransferFunction["AUDIO_IN"]; ok {
		t.Fatalf("the source net has no transfer function")
	}
	for _, tf := range data.TransferFunction {
		for i := range tf.Magnitude {
			if math.Abs(tf.Magnitude[i]-1) > 1e-12 || math.Abs(tf.Phase[i]) > 1e-12 {
				t.Fatalf("identical nets should have unity transfer, got %v/%v", tf.Magnitude[i], tf.Phase[i])
			}
		}
	}
}

func TestDCNetClasses(t *testing.T) {
	res := Run(context.Background(), DefaultDC(), amplifierTopology(), Options{})
	if !res.Success {
		t.Fatalf("DC failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*DCData)
	if data.NodeVoltages["GND"] != 0.0 {
		t.Fatalf("GND = %v, want 0", data.NodeVoltages["GND"])
	}
	if data.NodeVoltages["VCC"] != 5.0 {
		t.Fatalf("VCC = %v, want 5", data.NodeVoltages["VCC"])
	}
	if data.NodeVoltages["AUDIO_IN"] != 0 {
		t.Fatalf("a net without tracks should have no drop, got %v", data.NodeVoltages["AUDIO_IN"])
	}

	r := consts.CopperResistivity * 10e-3 / (0.25e-3 * 35e-6)
	if got := data.NodeVoltages["OUT"]; math.Abs(got-0.01*r)/(0.01*r) > 1e-9 {
		t.Fatalf("OUT = %v, want %v", got, 0.01*r)
	}
	if got := data.TrackResistance["OUT"]; math.Abs(got-r)/r > 1e-9 {
		t.Fatalf("OUT track resistance = %v, want %v", got, r)
	}

	wantCurrents := map[string]float64{"VCC": 0.1, "GND": 0, "OUT": 0.01, "AUDIO_IN": 0.01}
	for name, want := range wantCurrents {
		if data.BranchCurrents[name] != want {
			t.Fatalf("current %s = %v, want %v", name, data.BranchCurrents[name], want)
		}
	}

	wantPower := map[string]float64{"U1": 0.1, "R1": 0.01, "C1": 0.001, "VR1": 0.5, "J1": 0.05}
	total := 0.0
	for ref, want := range wantPower {
		if data.PowerDissipation[ref] != want {
			t.Fatalf("power %s = %v, want %v", ref, data.PowerDissipation[ref], want)
		}
		total += want
	}
	if math.Abs(data.TotalPower-total) > 1e-12 {
		t.Fatalf("total power = %v, want %v", data.TotalPower, total)
	}
}

func TestDCExplicitSources(t *testing.T) {
	req := DefaultDC()
	req.VoltageSources = map[string]float64{"VCC": 3.3, "OUT": 1.5}
	req.CurrentSources = map[string]float64{"OUT": 0.2}

	res := Run(context.Background(), req, amplifierTopology(), Options{})
	if !res.Success {
		t.Fatalf("DC failed: %s", res.ErrorMessage)
	}
	data := res.Data.(*DCData)
	if data.NodeVoltages["VCC"] != 3.3 || data.NodeVoltages["OUT"] != 1.5 {
		t.Fatalf("explicit voltages ignored: %v", data.NodeVoltages)
	}
	if data.BranchCurrents["OUT"] != 0.2 {
		t.Fatalf("explicit current ignored: %v", data.BranchCurrents)
	}
}

func TestComponentPower(t *testing.T) {
	tests := []struct {
		ref, value string
		want       float64
	}{
		{"U1", "Audio Amp", 0.1},
		{"U2", "LDO 3.3V", 0.5},
		{"U3", "Regulator", 0.5},
		{"VR1", "7805", 0.5},
		{"C7", "10u", 0.001},
		{"R3", "4k7", 0.01},
		{"D1", "1N4148", 0.05},
	}
	for _, tt := range tests {
		got := ComponentPower(topology.Component{Reference: tt.ref, Value: tt.value})
		if got != tt.want {
			t.Fatalf("ComponentPower(%s, %s) = %v, want %v", tt.ref, tt.value, got, tt.want)
		}
	}
}

func TestTransientSeries(t *testing.T) {
	res := Run(context.Background(), DefaultTransient(), amplifierTopology(), Options{})
	if !res.Success {
		t.Fatalf("transient failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*TransientData)
	if len(data.Time) != 1001 || len(data.Input) != 1001 {
		t.Fatalf("time grid has %d points, want 1001", len(data.Time))
	}
	for name, v := range data.Voltage {
		if len(v) != len(data.Time) || len(data.Current[name]) != len(data.Time) || len(data.Power[name]) != len(data.Time) {
			t.Fatalf("%s: series not aligned with the time grid", name)
		}
		if v[0] != 0 {
			t.Fatalf("%s: voltage at t=0 = %v, want 0", name, v[0])
		}
		if math.Abs(v[len(v)-1]-1) > 1e-9 {
			t.Fatalf("%s: settled voltage = %v, want 1", name, v[len(v)-1])
		}
		if data.Spectrum[name].Window != "hann" {
			t.Fatalf("%s: missing spectrum summary", name)
		}
	}
	if got := data.Current["VCC"][1000]; math.Abs(got-10) > 1e-6 {
		t.Fatalf("VCC current = %v, want 10", got)
	}
}

func TestTransientRejectsUnknownSignal(t *testing.T) {
	req := DefaultTransient()
	req.InputSignal = "triangle"
	res := Run(context.Background(), req, amplifierTopology(), Options{})
	if res.Success || !strings.Contains(res.ErrorMessage, "triangle") {
		t.Fatalf("expected failure naming the signal, got %+v", res)
	}
}

func TestNoiseTotalsAndAlignment(t *testing.T) {
	res := Run(context.Background(), DefaultNoise(), amplifierTopology(), Options{})
	if !res.Success {
		t.Fatalf("noise failed: %s", res.ErrorMessage)
	}

	data := res.Data.(*NoiseData)
	n := len(data.Frequencies)
	for name, total := range data.Total {
		th, sh, fl, hf := data.Thermal[name], data.Shot[name], data.Flicker[name], data.HighFrequency[name]
		if len(total) != n || len(th) != n || len(sh) != n || len(fl) != n || len(hf) != n ||
			len(data.NoiseFigure[name]) != n || len(data.SNR[name]) != n {
			t.Fatalf("%s: noise series not aligned", name)
		}
		for j := range total {
			want := math.Sqrt(th[j]*th[j] + sh[j]*sh[j] + fl[j]*fl[j] + hf[j]*hf[j])
			if math.Abs(total[j]-want) > 1e-18 {
				t.Fatalf("%s@%g: total %v != %v", name, data.Frequencies[j], total[j], want)
			}
		}
		sa := data.Spectrum[name]
		if sa.Low == nil || sa.Mid == nil || sa.High == nil {
			t.Fatalf("%s: every band should be populated for 20Hz-80kHz", name)
		}
	}
	if _, ok := data.Total["GND"]; ok {
		t.Fatalf("ground nets must not be analysed")
	}
}

func TestFourierTHD(t *testing.T) {
	req := DefaultFourier()
	req.NumHarmonics = 1
	res := Run(context.Background(), req, singleNetTopology("OUT"), Options{})
	if !res.Success {
		t.Fatalf("fourier failed: %s", res.ErrorMessage)
	}
	data := res.Data.(*FourierData)
	if got := data.HarmonicContent["OUT"]; len(got) != 1 || got[0] != 1.0 {
		t.Fatalf("harmonic content = %v, want [1]", got)
	}
	if data.THD["OUT"] != 0.0 {
		t.Fatalf("single harmonic THD = %v, want 0", data.THD["OUT"])
	}

	res = Run(context.Background(), DefaultFourier(), singleNetTopology("OUT"), Options{})
	data = res.Data.(*FourierData)
	sum := 0.0
	for k := 2; k <= 10; k++ {
		sum += 1 / float64(k*k)
	}
	if got := data.THD["OUT"]; math.Abs(got-math.Sqrt(sum)) > 1e-12 {
		t.Fatalf("THD = %v, want %v", got, math.Sqrt(sum))
	}
	if data.Harmonics[9] != 10000 || data.Phase["OUT"][1] != 90 || data.PowerSpectrum["OUT"][1] != 0.25 {
		t.Fatalf("unexpected harmonic series %v %v %v", data.Harmonics, data.Phase["OUT"], data.PowerSpectrum["OUT"])
	}
	if data.Window != "hann" {
		t.Fatalf("window = %q, want hann", data.Window)
	}
}

func TestInvalidParametersFail(t *testing.T) {
	badAC := DefaultAC()
	badAC.NumPoints = 0
	badFourier := DefaultFourier()
	badFourier.NumHarmonics = 0
	badNoise := DefaultNoise()
	badNoise.ReferenceImpedance = 0
	badTran := DefaultTransient()
	badTran.TimeStep = 0

	for _, req := range []Request{badAC, badFourier, badNoise, badTran} {
		res := Run(context.Background(), req, amplifierTopology(), Options{})
		if res.Success || res.Data != nil {
			t.Fatalf("%s: expected failure", req.Kind())
		}
		if !strings.Contains(res.ErrorMessage, ErrInvalidParameter.Error()) {
			t.Fatalf("%s: unexpected message %q", req.Kind(), res.ErrorMessage)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Run(ctx, DefaultAC(), amplifierTopology(), Options{})
	if res.Success || !strings.Contains(res.ErrorMessage, ErrCancelled.Error()) {
		t.Fatalf("expected cancellation failure, got %+v", res)
	}
}

func TestRunMetadata(t *testing.T) {
	res := Run(context.Background(), DefaultAC(), amplifierTopology(), Options{})
	md := res.Metadata
	if md.RunID == "" || md.Fingerprint == "" {
		t.Fatalf("missing identifiers %+v", md)
	}
	if md.Parameters["acSource"] != "V1" || md.Parameters["numPoints"] != float64(200) {
		t.Fatalf("parameters not echoed: %v", md.Parameters)
	}
	if md.Circuit.Components != 5 || md.Circuit.GroundNets != 1 {
		t.Fatalf("unexpected circuit stats %+v", md.Circuit)
	}
}

func TestRunUsesSharedModel(t *testing.T) {
	model := response.NewModel()
	req := ACRequest{StartFrequency: 20, StopFrequency: 20000, NumPoints: 10, Source: "V1", Amplitude: 1}
	Run(context.Background(), req, singleNetTopology("OUT"), Options{Model: model})
	if model.Evaluations() != 10 {
		t.Fatalf("model evaluations = %d, want 10", model.Evaluations())
	}
}

func TestForEachRecoversPanics(t *testing.T) {
	err := forEach(context.Background(), 8, 4, func(i int) error {
		if i == 5 {
			panic("boom")
		}
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected recovered panic, got %v", err)
	}

	sentinel := errors.New("stop")
	err = forEach(context.Background(), 8, 2, func(i int) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	seen := make([]bool, 100)
	if err := forEach(context.Background(), len(seen), 7, func(i int) error { seen[i] = true; return nil }); err != nil {
		t.Fatalf("forEach: %v", err)
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d never visited", i)
		}
	}
}

func TestFourierEchoesAnyWindowType(t *testing.T) {
	for _, name := range []string{"kaiser", "BlackmanHarris", "hann"} {
		req, err := ParseRequest("fourier", map[string]any{"windowType": name})
		if err != nil {
			t.Fatalf("ParseRequest(%q): %v", name, err)
		}
		res := Run(context.Background(), req, amplifierTopology(), Options{})
		if !res.Success {
			t.Fatalf("windowType %q: %s", name, res.ErrorMessage)
		}
		if got := res.Data.(*FourierData).Window; got != strings.ToLower(name) {
			t.Fatalf("window = %q, want %q", got, strings.ToLower(name))
		}
	}
}

func literalTopology() *topology.Topology {
	return &topology.Topology{
		Components: map[string]topology.Component{
			"U1": {Value: "OPAMP", Pads: []topology.Pad{pad("1", "OUT"), pad("8", "VCC"), pad("4", "GND")}},
		},
		Nets: map[string]topology.Net{
			"VCC": {Name: "VCC"},
			"GND": {Name: "GND"},
			"OUT": {},
		},
	}
}

func TestLiteralTopologyRoles(t *testing.T) {
	ctx := context.Background()

	res := Run(ctx, DefaultDC(), literalTopology(), Options{})
	if !res.Success {
		t.Fatalf("dc failed: %s", res.ErrorMessage)
	}
	dc := res.Data.(*DCData)
	if dc.NodeVoltages["VCC"] != 5 || dc.NodeVoltages["GND"] != 0 {
		t.Fatalf("voltages = %v, want VCC 5 and GND 0", dc.NodeVoltages)
	}
	if dc.BranchCurrents["VCC"] != 0.1 || dc.BranchCurrents["GND"] != 0 {
		t.Fatalf("currents = %v, want VCC 0.1 and GND 0", dc.BranchCurrents)
	}
	if res.Metadata.Circuit.PowerNets != 1 || res.Metadata.Circuit.GroundNets != 1 {
		t.Fatalf("circuit stats = %+v", res.Metadata.Circuit)
	}

	res = Run(ctx, ACRequest{StartFrequency: 20, StopFrequency: 20000, NumPoints: 10, Source: "V1", Amplitude: 1}, literalTopology(), Options{})
	if !res.Success {
		t.Fatalf("ac failed: %s", res.ErrorMessage)
	}
	ac := res.Data.(*ACData)
	if _, ok := ac.MagnitudeResponse["GND"]; ok {
		t.Fatalf("ground net must not be analysed")
	}
	if got := ac.Impedance["VCC"][0]; got != 0.1 {
		t.Fatalf("VCC impedance = %v, want 0.1", got)
	}
	if got := ac.Impedance["OUT"][0]; got != 50 {
		t.Fatalf("OUT impedance = %v, want 50", got)
	}
}
