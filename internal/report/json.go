package report

import (
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

// Record is the JSON form of one rule.
type Record struct {
	Premise            []string   `json:"premise"`
	Consequence        []string   `json:"consequence"`
	PremiseSupport     int        `json:"premiseSupport"`
	ConsequenceSupport int        `json:"consequenceSupport"`
	Support            int        `json:"support"`
	Confidence         float64    `json:"confidence"`
	Lift               float64    `json:"lift"`
	Leverage           float64    `json:"leverage"`
	Conviction         Conviction `json:"conviction"`
}

// Conviction encodes +Inf as the string "Infinity", which JSON numbers
// cannot express.
type Conviction float64

// MarshalJSON implements json.Marshaler.
func (c Conviction) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(c), 1) {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Conviction) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*c = Conviction(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Conviction(v)
	return nil
}

// Records converts rules to their JSON form. Never returns nil, so an empty
// result encodes as [].
func Records(rules []fpgrowth.AssociationRule) []Record {
	out := make([]Record, len(rules))
	for i, r := range rules {
		out[i] = Record{
			Premise:            r.Premise,
			Consequence:        r.Consequence,
			PremiseSupport:     r.PremiseSupport,
			ConsequenceSupport: r.ConsequenceSupport,
			Support:            r.Support,
			Confidence:         r.Confidence,
			Lift:               r.Lift,
			Leverage:           r.Leverage,
			Conviction:         Conviction(r.Conviction),
		}
	}
	return out
}

// JSONRenderer writes rules as a JSON array.
type JSONRenderer struct {
	Indent string
}

// Render implements Renderer.
func (r *JSONRenderer) Render(w io.Writer, rules []fpgrowth.AssociationRule) error {
	enc := json.NewEncoder(w)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(Records(rules))
}
