package transforms

import (
	"fmt"
	"strings"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/utils"
)

// ChecksumModulus bounds the plan checksum.
const ChecksumModulus = 997

// Plan is the ordered list of transforms applied to one word. The same list
// is stored in the reverse key and replayed backwards on decode.
type Plan []ID

// Validate checks that every entry names a transform.
func (p Plan) Validate() error {
	for i, id := range p {
		if !id.Valid() {
			return fmt.Errorf("%w: transform %d at position %d", dserrors.ErrInvalidReverseKey, uint8(id), i)
		}
	}
	return nil
}

// Checksum returns sum(plan) mod 997.
func (p Plan) Checksum() int {
	sum := 0
	for _, id := range p {
		sum += int(id)
	}
	return sum % ChecksumModulus
}

// Ints converts the plan to the integer form used in the reverse key.
func (p Plan) Ints() []int {
	out := make([]int, len(p))
	for i, id := range p {
		out[i] = int(id)
	}
	return out
}

// PlanFromInts converts reverse key integers to a Plan, rejecting values
// outside the transform table.
func PlanFromInts(values []int) (Plan, error) {
	plan := make(Plan, len(values))
	for i, v := range values {
		if v < 0 || v >= Count {
			return nil, fmt.Errorf("%w: transform %d at position %d", dserrors.ErrInvalidReverseKey, v, i)
		}
		plan[i] = ID(v)
	}
	return plan, nil
}

// String renders the plan as pipe-separated transform names.
func (p Plan) String() string {
	if len(p) == 0 {
		return "raw"
	}
	names := make([]string, len(p))
	for i, id := range p {
		names[i] = id.String()
	}
	return strings.Join(names, "|")
}

// ParsePlan parses a pipe-separated list of transform names.
func ParsePlan(s string) (Plan, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "raw" {
		return Plan{}, nil
	}

	var plan Plan
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, ok := ByName(part)
		if !ok {
			return nil, fmt.Errorf("%w: unknown transform name %q", dserrors.ErrParse, part)
		}
		plan = append(plan, t.ID())
	}
	return plan, nil
}

// ApplyChain applies the plan to data in order. Seeded transforms receive
// seed; unseeded ones receive the zero Seed. data is not modified, and every
// intermediate buffer is wiped once the next step has consumed it.
func ApplyChain(data []byte, plan Plan, seed Seed) ([]byte, error) {
	current := data

	for _, id := range plan {
		t, err := Get(id)
		if err != nil {
			wipeIntermediate(current, data)
			return nil, err
		}

		result, err := t.Apply(current, seedFor(t, seed))
		wipeIntermediate(current, data)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", t.Name(), err)
		}

		current = result
	}

	if len(plan) == 0 {
		return append([]byte(nil), data...), nil
	}
	return current, nil
}

// ReverseChain undoes ApplyChain by applying inverses in reverse order.
func ReverseChain(data []byte, plan Plan, seed Seed) ([]byte, error) {
	current := data

	for i := len(plan) - 1; i >= 0; i-- {
		t, err := Get(plan[i])
		if err != nil {
			wipeIntermediate(current, data)
			return nil, err
		}

		result, err := t.Reverse(current, seedFor(t, seed))
		wipeIntermediate(current, data)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", t.Name(), err)
		}

		current = result
	}

	if len(plan) == 0 {
		return append([]byte(nil), data...), nil
	}
	return current, nil
}

func seedFor(t Transform, seed Seed) Seed {
	if t.Seeded() {
		return seed
	}
	return Seed{}
}

// wipeIntermediate wipes a chain-owned buffer. The caller's input is left
// alone.
func wipeIntermediate(current, input []byte) {
	if len(current) == 0 || len(input) > 0 && &current[0] == &input[0] {
		return
	}
	utils.Wipe(current)
}
