// Package snapshot caches synthesized datasets.
//
// A snapshot is identified by every input that determines its content, so
// two equal keys always name bit-identical datasets. Lookups go memory,
// then Redis, then the synthesizer.
package snapshot

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/synth"
)

// KeyPrefix namespaces snapshot keys in shared stores.
const KeyPrefix = "portemission:snapshot:"

// keySpace is the UUID namespace snapshot keys are derived in.
var keySpace = uuid.MustParse("6f1c2a4e-8d3b-5e7f-9a10-2b4c6d8e0f12")

// Params are the determinism inputs of one snapshot.
type Params struct {
	Rows    int           `json:"rows"`
	Seed    uint64        `json:"seed"`
	Anchor  time.Time     `json:"anchor"`
	Profile synth.Profile `json:"profile"`
	Allow   []int         `json:"allow,omitempty"`
}

// Key derives a stable cache key from p. The anchor only counts to the day,
// and allow-list order is irrelevant.
func Key(p Params) string {
	p.Anchor = engine.Day(p.Anchor)
	if len(p.Allow) > 0 {
		allow := append([]int(nil), p.Allow...)
		sort.Ints(allow)
		p.Allow = allow
	}
	// Params holds only plain values; Marshal cannot fail.
	payload, _ := json.Marshal(p)
	return KeyPrefix + uuid.NewSHA1(keySpace, payload).String()
}
