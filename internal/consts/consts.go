package consts

const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)
	T0        = 290.0         // Standard noise temperature (K)
	ROOMTEMP  = 300.0         // Reference temperature of the noise model (K)
)

const (
	CornerFrequency  = 1e6   // Single-pole corner of the net response model (Hz)
	AudioBandEdge    = 20e3  // Upper edge of the audio band (Hz)
	FlickerCorner    = 1e3   // 1/f noise corner (Hz)
	FlickerTailDecay = 50e3  // Decay constant of the HF flicker tail (Hz)
	NoiseBandwidth   = 1e6   // Noise bandwidth inside the audio band (Hz)
	NoiseBandwidthHF = 2e6   // Noise bandwidth above the audio band (Hz)
	TransientTau     = 1e-6  // RC time constant of the transient model (s)
	TransientRate    = 1e6   // Sample rate used to index the input signal (Hz)
	ReferenceFreq    = 1e3   // Frequency used for transient current impedance (Hz)
	DefaultSignalHz  = 1e3   // Frequency of periodic transient inputs (Hz)
	AudioBandStart   = 20.0  // Lower edge of the audio band (Hz)
	MidBandStart     = 1e3   // Start of the high-precision mid band (Hz)
	NoiseFloorVolts  = 1e-9  // 1 nV/sqrt(Hz) reference density
	SNRCeilingDB     = 100.0 // SNR reported for a noiseless net (dB)
)

const (
	CopperResistivity   = 1.72e-8 // Copper resistivity at 20 C (ohm m)
	CopperTempCoeff     = 0.00393 // Copper resistance temperature coefficient (1/K)
	CopperThicknessUM   = 35.0    // 1 oz copper (um)
	DefaultTrackWidthMM = 0.25    // Width assumed for tracks without one (mm)
	NodeMergeMM         = 1e-3    // Track endpoints closer than this share a node (mm)
	SignalCurrent       = 0.01    // Current assumed through signal tracks (A)
	TNOM                = 300.15  // Nominal device temperature, 27 C (K)
)
