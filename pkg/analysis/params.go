package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseRequest converts an open parameter map into the typed request for
// kind. Missing keys keep their defaults and unrecognised keys are ignored.
// Numeric values may be given as numbers or numeric strings.
func ParseRequest(kind string, params map[string]any) (Request, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	p := paramMap(params)

	switch k {
	case KindDC:
		r := DefaultDC()
		if r.VoltageSources, err = p.getFloatMap("voltageSources", r.VoltageSources); err != nil {
			return nil, err
		}
		if r.CurrentSources, err = p.getFloatMap("currentSources", r.CurrentSources); err != nil {
			return nil, err
		}
		if r.Tolerance, err = p.getFloat("tolerance", r.Tolerance); err != nil {
			return nil, err
		}
		if r.MaxIterations, err = p.getInt("maxIterations", r.MaxIterations); err != nil {
			return nil, err
		}
		if r.Temperature, err = p.getFloat("temperature", r.Temperature); err != nil {
			return nil, err
		}
		return r, nil

	case KindAC:
		r := DefaultAC()
		if r.StartFrequency, err = p.getFloat("startFrequency", r.StartFrequency); err != nil {
			return nil, err
		}
		if r.StopFrequency, err = p.getFloat("stopFrequency", r.StopFrequency); err != nil {
			return nil, err
		}
		if r.NumPoints, err = p.getInt("numPoints", r.NumPoints); err != nil {
			return nil, err
		}
		if r.Source, err = p.getString("acSource", r.Source); err != nil {
			return nil, err
		}
		if r.Amplitude, err = p.getFloat("acAmplitude", r.Amplitude); err != nil {
			return nil, err
		}
		if r.HighPrecision, err = p.getBool("highPrecision", r.HighPrecision); err != nil {
			return nil, err
		}
		return r, nil

	case KindTransient:
		r := DefaultTransient()
		if r.StartTime, err = p.getFloat("startTime", r.StartTime); err != nil {
			return nil, err
		}
		if r.StopTime, err = p.getFloat("stopTime", r.StopTime); err != nil {
			return nil, err
		}
		if r.TimeStep, err = p.getFloat("timeStep", r.TimeStep); err != nil {
			return nil, err
		}
		if r.InputSignal, err = p.getString("inputSignal", r.InputSignal); err != nil {
			return nil, err
		}
		if r.InputAmplitude, err = p.getFloat("inputAmplitude", r.InputAmplitude); err != nil {
			return nil, err
		}
		if r.InputFrequency, err = p.getFloat("inputFrequency", r.InputFrequency); err != nil {
			return nil, err
		}
		if r.Window, err = p.getString("window", r.Window); err != nil {
			return nil, err
		}
		return r, nil

	case KindNoise:
		r := DefaultNoise()
		if r.StartFrequency, err = p.getFloat("startFrequency", r.StartFrequency); err != nil {
			return nil, err
		}
		if r.StopFrequency, err = p.getFloat("stopFrequency", r.StopFrequency); err != nil {
			return nil, err
		}
		if r.NumPoints, err = p.getInt("numPoints", r.NumPoints); err != nil {
			return nil, err
		}
		if r.Temperature, err = p.getFloat("temperature", r.Temperature); err != nil {
			return nil, err
		}
		if r.ReferenceImpedance, err = p.getFloat("referenceImpedance", r.ReferenceImpedance); err != nil {
			return nil, err
		}
		if r.HighPrecision, err = p.getBool("highPrecision", r.HighPrecision); err != nil {
			return nil, err
		}
		if r.SignalLevel, err = p.getFloat("signalLevel", r.SignalLevel); err != nil {
			return nil, err
		}
		return r, nil

	case KindFourier:
		r := DefaultFourier()
		if r.FundamentalFrequency, err = p.getFloat("fundamentalFrequency", r.FundamentalFrequency); err != nil {
			return nil, err
		}
		if r.NumHarmonics, err = p.getInt("numHarmonics", r.NumHarmonics); err != nil {
			return nil, err
		}
		if r.WindowType, err = p.getString("windowType", r.WindowType); err != nil {
			return nil, err
		}
		return r, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

type paramMap map[string]any

func (p paramMap) getFloat(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, invalid("%s: %v", key, err)
	}
	return f, nil
}

func (p paramMap) getInt(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, invalid("%s: %v", key, err)
	}
	if f != float64(int(f)) {
		return 0, invalid("%s: %v is not an integer", key, v)
	}
	return int(f), nil
}

func (p paramMap) getBool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, invalid("%s: %q is not a boolean", key, b)
		}
		return parsed, nil
	}
	return false, invalid("%s: unsupported type %T", key, v)
}

func (p paramMap) getString(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid("%s: unsupported type %T", key, v)
	}
	return s, nil
}

// getFloatMap accepts a map of numbers or a "NET:value,NET:value" string.
func (p paramMap) getFloatMap(key string, def map[string]float64) (map[string]float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}

	out := make(map[string]float64)
	switch m := v.(type) {
	case map[string]float64:
		for name, f := range m {
			out[name] = f
		}
	case map[string]any:
		for name, raw := range m {
			f, err := toFloat(raw)
			if err != nil {
				return nil, invalid("%s[%s]: %v", key, name, err)
			}
			out[name] = f
		}
	case string:
		for _, pair := range strings.Split(m, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, raw, found := strings.Cut(pair, ":")
			if !found {
				return nil, invalid("%s: %q is not NET:value", key, pair)
			}
			f, err := toFloat(raw)
			if err != nil {
				return nil, invalid("%s[%s]: %v", key, name, err)
			}
			out[strings.TrimSpace(name)] = f
		}
	default:
		return nil, invalid("%s: unsupported type %T", key, v)
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
