package transforms

import (
	"fmt"
	"strconv"

	dserrors "github.com/Kryklin/darkstar/go/darkstar/pkg/errors"
	"github.com/Kryklin/darkstar/go/darkstar/pkg/prng"
)

// packedPlanSize is the size of one nibble-packed plan: twelve 4-bit ids.
const packedPlanSize = Count / 2

// SelectPlan derives the plan for a word: a Fisher-Yates shuffle of every
// transform id, seeded with password followed by word.
func SelectPlan(password, word string, newGenerator prng.Factory) Plan {
	plan := make(Plan, Count)
	for i := range plan {
		plan[i] = ID(i)
	}
	prng.Shuffle(len(plan), newGenerator(password+word), func(i, j int) {
		plan[i], plan[j] = plan[j], plan[i]
	})
	return plan
}

// SeedInput returns password followed by the decimal digits of the plan
// checksum. The caller owns the returned buffer and should wipe it.
func SeedInput(password []byte, plan Plan) []byte {
	digits := strconv.Itoa(plan.Checksum())
	key := make([]byte, 0, len(password)+len(digits))
	key = append(key, password...)
	return append(key, digits...)
}

// PackPlans packs full plans two ids per byte, high nibble first, six bytes
// per word. Only complete twelve-step plans can be packed.
func PackPlans(plans []Plan) ([]byte, error) {
	packed := make([]byte, 0, len(plans)*packedPlanSize)
	for w, plan := range plans {
		if len(plan) != Count {
			return nil, fmt.Errorf("%w: word %d has %d steps, packing needs %d", dserrors.ErrInvalidReverseKey, w, len(plan), Count)
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("word %d: %w", w, err)
		}
		for i := 0; i < Count; i += 2 {
			packed = append(packed, byte(plan[i])<<4|byte(plan[i+1]))
		}
	}
	return packed, nil
}

// UnpackPlans reverses PackPlans.
func UnpackPlans(packed []byte) ([]Plan, error) {
	if len(packed)%packedPlanSize != 0 {
		return nil, fmt.Errorf("%w: packed reverse key length %d is not a multiple of %d", dserrors.ErrParse, len(packed), packedPlanSize)
	}

	plans := make([]Plan, 0, len(packed)/packedPlanSize)
	for off := 0; off < len(packed); off += packedPlanSize {
		plan := make(Plan, 0, Count)
		for _, b := range packed[off : off+packedPlanSize] {
			plan = append(plan, ID(b>>4), ID(b&0x0f))
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("word %d: %w", off/packedPlanSize, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
