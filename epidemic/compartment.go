package epidemic

import "fmt"

// Compartment is the disease-state category of an individual. The set is
// closed: transition logic switches exhaustively over these five values.
type Compartment int

const (
	Healthy Compartment = iota
	Infected
	Recovered
	Quarantined
	Deceased
)

const numCompartments = 5

// compartmentNames holds the wire names used by the simulation service contract.
var compartmentNames = [numCompartments]string{
	Healthy:     "healthy",
	Infected:    "infected",
	Recovered:   "recovered",
	Quarantined: "quarantined",
	Deceased:    "deceased",
}

func (c Compartment) String() string {
	if c < 0 || int(c) >= numCompartments {
		return fmt.Sprintf("compartment(%d)", int(c))
	}
	return compartmentNames[c]
}

// Terminal reports whether the compartment is absorbing: once an individual
// is Recovered or Deceased no step re-evaluates it.
func (c Compartment) Terminal() bool {
	return c == Recovered || c == Deceased
}

// ParseCompartment maps a wire name back to a Compartment.
func ParseCompartment(s string) (Compartment, error) {
	for i, name := range compartmentNames {
		if name == s {
			return Compartment(i), nil
		}
	}
	return Healthy, fmt.Errorf("unknown compartment %q", s)
}

// Counts is the aggregate per-compartment census emitted each step.
// JSON field names match the simulation service contract.
type Counts struct {
	Healthy     int `json:"healthy"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
	Quarantined int `json:"quarantined"`
	Deceased    int `json:"deceased"`
}

// Total returns the population size represented by the counts.
func (c Counts) Total() int {
	return c.Healthy + c.Infected + c.Recovered + c.Quarantined + c.Deceased
}

// add increments the bucket for the given compartment.
func (c *Counts) add(cp Compartment) {
	switch cp {
	case Healthy:
		c.Healthy++
	case Infected:
		c.Infected++
	case Recovered:
		c.Recovered++
	case Quarantined:
		c.Quarantined++
	case Deceased:
		c.Deceased++
	}
}

// Get returns the bucket for the given compartment.
func (c Counts) Get(cp Compartment) int {
	switch cp {
	case Healthy:
		return c.Healthy
	case Infected:
		return c.Infected
	case Recovered:
		return c.Recovered
	case Quarantined:
		return c.Quarantined
	case Deceased:
		return c.Deceased
	}
	return 0
}

// CountsFromMap builds Counts from a keyed map. Missing keys count as zero so
// legacy payloads that omit quarantined/deceased remain usable.
func CountsFromMap(m map[string]int) Counts {
	return Counts{
		Healthy:     m["healthy"],
		Infected:    m["infected"],
		Recovered:   m["recovered"],
		Quarantined: m["quarantined"],
		Deceased:    m["deceased"],
	}
}
