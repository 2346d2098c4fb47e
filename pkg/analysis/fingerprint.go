package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a request by value. Canonical is the serialised
// form the hash was taken over, kept so that a hash collision can be told
// apart from a genuine match.
type Fingerprint struct {
	Hash      uint64
	Canonical string
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", f.Hash)
}

type envelope struct {
	Kind   Kind    `json:"kind"`
	Params Request `json:"params"`
}

// FingerprintOf serialises the request deterministically (struct fields in
// declaration order, map keys sorted) and hashes the result.
func FingerprintOf(req Request) (Fingerprint, error) {
	if req == nil {
		return Fingerprint{}, fmt.Errorf("%w: nil request", ErrInvalidParameter)
	}

	canonical, err := json.Marshal(envelope{Kind: req.Kind(), Params: normalize(req)})
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return Fingerprint{Hash: xxhash.Sum64(canonical), Canonical: string(canonical)}, nil
}

// Parameters echoes the request as a generic map, using the same keys
// ParseRequest accepts.
func Parameters(req Request) map[string]any {
	out := make(map[string]any)
	raw, err := json.Marshal(normalize(req))
	if err != nil {
		return out
	}
	// a nil request encodes as null, which leaves out nil
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return make(map[string]any)
	}
	return out
}

// normalize dereferences pointer requests and maps requests that differ
// only in nil versus empty maps onto one form.
func normalize(req Request) Request {
	switch r := req.(type) {
	case *DCRequest:
		return normalize(*r)
	case *ACRequest:
		return *r
	case *TransientRequest:
		return *r
	case *NoiseRequest:
		return *r
	case *FourierRequest:
		return *r
	case DCRequest:
		if r.VoltageSources == nil {
			r.VoltageSources = map[string]float64{}
		}
		if r.CurrentSources == nil {
			r.CurrentSources = map[string]float64{}
		}
		return r
	}
	return req
}
