package domain

import (
	"encoding/json"
	"strconv"
)

const unboundedLabel = "unbounded"

// CoverageDays is the number of whole days current stock lasts at the mean daily demand.
// With no demand the coverage is unbounded and Days carries no meaning.
type CoverageDays struct {
	Days      int
	Unbounded bool
}

// UnboundedCoverage returns the marker used when there is no demand to consume stock
func UnboundedCoverage() CoverageDays {
	return CoverageDays{Unbounded: true}
}

// BoundedCoverage returns a finite coverage of n days
func BoundedCoverage(n int) CoverageDays {
	return CoverageDays{Days: n}
}

func (c CoverageDays) String() string {
	if c.Unbounded {
		return unboundedLabel
	}
	return strconv.Itoa(c.Days)
}

// MarshalJSON encodes finite coverage as a number and unbounded coverage as "unbounded"
func (c CoverageDays) MarshalJSON() ([]byte, error) {
	if c.Unbounded {
		return json.Marshal(unboundedLabel)
	}
	return json.Marshal(c.Days)
}

func (c *CoverageDays) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != unboundedLabel {
			return &json.UnsupportedValueError{Str: label}
		}
		*c = UnboundedCoverage()
		return nil
	}

	var days int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*c = BoundedCoverage(days)
	return nil
}
