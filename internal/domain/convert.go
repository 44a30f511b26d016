package domain

// Unit is a weight unit accepted at the edges. Records are always stored in kg.
type Unit string

const (
	UnitKg Unit = "kg"
	UnitLb Unit = "lb"
)

const kgToLb = 2.2046226218

// ParseUnit maps "" to kg and rejects anything other than kg or lb.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", UnitKg:
		return UnitKg, nil
	case UnitLb:
		return UnitLb, nil
	}
	return "", Invalid("unit", `must be "kg" or "lb"`)
}

// ConvertWeight converts a weight value between kg and lb.
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	if from == UnitKg && to == UnitLb {
		return v * kgToLb
	}
	if from == UnitLb && to == UnitKg {
		return v / kgToLb
	}
	return v
}
