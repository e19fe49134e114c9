// Package wilsons loads IR Wilson-coefficient extractions and their JSON
// metadata sidecar.
package wilsons

import (
	"bytes"
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bakeoff/internal/table"
)

// Entry is the sidecar metadata of one galaxy.
type Entry struct {
	Status string
	Values map[string]float64
}

// Value returns the named numeric field, or NaN when absent.
func (e Entry) Value(name string) float64 {
	if v, ok := e.Values[name]; ok {
		return v
	}
	return math.NaN()
}

// Metadata maps galaxy identifier to sidecar entry.
type Metadata map[string]Entry

// PassIDs returns the set of identifiers with PASS status.
func (m Metadata) PassIDs() map[string]bool {
	out := make(map[string]bool, len(m))
	for id, e := range m {
		if e.Status == passStatus {
			out[id] = true
		}
	}
	return out
}

// LoadMetadata reads a JSON sidecar from disk.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "wilsons: read metadata %s", path)
	}
	m, err := ParseMetadata(data)
	if err != nil {
		return nil, eris.Wrapf(err, "wilsons: parse metadata %s", path)
	}
	return m, nil
}

// ParseMetadata decodes a sidecar document: a JSON object keyed by galaxy
// identifier. Entries that are not objects are ignored. Fields that are not
// numbers (or numeric strings) read as NaN.
func ParseMetadata(data []byte) (Metadata, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "wilsons: sidecar must be a JSON object")
	}

	m := make(Metadata, len(raw))
	for id, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 || msg[0] != '{' {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, eris.Wrapf(err, "wilsons: decode entry %s", id)
		}
		e := Entry{Values: make(map[string]float64, len(fields))}
		for k, v := range fields {
			if k == "status" {
				e.Status, _ = v.(string)
				continue
			}
			e.Values[k] = toFloat(v)
		}
		m[id] = e
	}
	return m, nil
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return table.Coerce(x)
	default:
		return math.NaN()
	}
}
