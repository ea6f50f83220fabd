package inventory

// Parameters holds the fixed policy constants baked into the formulas
type Parameters struct {
	SmoothingAlpha      float64 // exponential smoothing constant for the daily forecast
	ServiceLevelZ       float64 // standard-normal quantile for the target service level
	DemandVariability   float64 // daily demand std dev as a fraction of daily demand
	DaysPerYear         float64 // commercial year used to derive daily demand
	ForecastHorizonDays int     // days covered by the forecast total
	DemandWindowDays    int     // trailing sales window for demand statistics
}

// DefaultParameters returns α=0.3, Z=1.64 (~95% service), 20% variability and a 360-day year
func DefaultParameters() Parameters {
	return Parameters{
		SmoothingAlpha:      0.3,
		ServiceLevelZ:       1.64,
		DemandVariability:   0.20,
		DaysPerYear:         360,
		ForecastHorizonDays: 30,
		DemandWindowDays:    30,
	}
}

// withDefaults replaces non-positive fields with their defaults
func (p Parameters) withDefaults() Parameters {
	d := DefaultParameters()
	if p.SmoothingAlpha <= 0 || p.SmoothingAlpha > 1 {
		p.SmoothingAlpha = d.SmoothingAlpha
	}
	if p.ServiceLevelZ <= 0 {
		p.ServiceLevelZ = d.ServiceLevelZ
	}
	if p.DemandVariability <= 0 {
		p.DemandVariability = d.DemandVariability
	}
	if p.DaysPerYear <= 0 {
		p.DaysPerYear = d.DaysPerYear
	}
	if p.ForecastHorizonDays <= 0 {
		p.ForecastHorizonDays = d.ForecastHorizonDays
	}
	if p.DemandWindowDays <= 0 {
		p.DemandWindowDays = d.DemandWindowDays
	}
	return p
}
