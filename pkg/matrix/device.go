package matrix

// DeviceMatrix is the stamping surface a device writes its conductances and
// injected currents into. Indices are 1-based; 0 is the reference node.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}
