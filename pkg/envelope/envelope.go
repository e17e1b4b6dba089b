package envelope

import (
	"encoding/json"
	"strings"

	"github.com/Kryklin/darkstar/go/darkstar/pkg/format"
)

// Envelope is a parsed artifact: the format it claims and its
// TransitString.
type Envelope struct {
	Version format.Version
	Data    string
}

type wireEnvelope struct {
	V    int    `json:"v"`
	Data string `json:"data"`
}

// Wrap tags a TransitString as V2: {"v":2,"data":"..."}.
func Wrap(transit string) string {
	out, _ := json.Marshal(wireEnvelope{V: format.EnvelopeVersion, Data: transit})
	return string(out)
}

// Parse classifies an artifact. A JSON object with "v" equal to 2 and a
// non-empty string "data" is V2; anything else is treated as a bare V1
// TransitString and returned whole.
func Parse(artifact string) Envelope {
	trimmed := strings.TrimSpace(artifact)
	if strings.HasPrefix(trimmed, "{") {
		var probe struct {
			V    json.RawMessage `json:"v"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
			var v float64
			var data string
			if json.Unmarshal(probe.V, &v) == nil && v == float64(format.EnvelopeVersion) &&
				json.Unmarshal(probe.Data, &data) == nil && data != "" {
				return Envelope{Version: format.V2, Data: data}
			}
		}
	}
	return Envelope{Version: format.V1, Data: artifact}
}
