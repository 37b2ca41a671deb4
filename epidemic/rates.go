package epidemic

import "fmt"

// Rates bundles the per-step transition probabilities. All values are
// probabilities in [0,1]; Validate must pass before the rates reach the
// engine, which treats them as trusted.
type Rates struct {
	Infection  float64 `json:"infectionRate" yaml:"infection_rate"`
	Recovery   float64 `json:"recoveryRate" yaml:"recovery_rate"`
	Death      float64 `json:"deathRate" yaml:"death_rate"`
	Quarantine float64 `json:"quarantineRate" yaml:"quarantine_rate"`
}

// Validate fails fast on any probability outside [0,1].
func (r Rates) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %.3f", name, v)
		}
		return nil
	}
	if err := check("infection rate", r.Infection); err != nil {
		return err
	}
	if err := check("recovery rate", r.Recovery); err != nil {
		return err
	}
	if err := check("death rate", r.Death); err != nil {
		return err
	}
	return check("quarantine rate", r.Quarantine)
}

// DefaultRates is the baseline outbreak parameterization.
func DefaultRates() Rates {
	return Rates{
		Infection:  0.3,
		Recovery:   0.1,
		Death:      0.02,
		Quarantine: 0.3,
	}
}
