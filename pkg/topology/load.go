package topology

import (
	"encoding/json"
	"fmt"
	"io"
)

type topologyJSON struct {
	Components map[string]Component `json:"components"`
	Nets       map[string]Net       `json:"nets"`
	Board      BoardInfo            `json:"boardInfo"`
}

// Load decodes a JSON topology snapshot as written by a board extractor and
// ingests it with New.
func Load(r io.Reader) (*Topology, error) {
	var payload topologyJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("topology: decode failed: %w", err)
	}

	for ref, c := range payload.Components {
		for i, pad := range c.Pads {
			if pad.Number == "" {
				return nil, fmt.Errorf("topology: component %s pad %d has no number", ref, i)
			}
		}
	}

	return New(payload.Components, payload.Nets, payload.Board), nil
}
