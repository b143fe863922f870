package game

import "fmt"

// Balance holds the tuning constants of the combat and setup rules.
type Balance struct {
	// K scales the power difference fed into the logistic function.
	K float64 `yaml:"k"`
	// AttackerAdvantageX is added to the logistic input; positive favors the attacker.
	AttackerAdvantageX float64 `yaml:"attacker_advantage_x"`
	// NeighborSupportWeight is the power added per same-team neighbor of the acting cell.
	NeighborSupportWeight float64 `yaml:"neighbor_support_weight"`

	Overall  OverallBalance `yaml:"overall"`
	Form     FormBalance    `yaml:"form"`
	Capital  CapitalBalance `yaml:"capital"`
	Neutrals NeutralBalance `yaml:"neutrals"`
}

// OverallBalance bounds a team's strength rating.
type OverallBalance struct {
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
	Default int `yaml:"default"`
	Step    int `yaml:"step"`
}

// FormBalance bounds a team's morale multiplier and how far it moves per battle.
type FormBalance struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Win  float64 `yaml:"win"`
	Loss float64 `yaml:"loss"`
}

// CapitalBalance controls the form penalty after losing a capital.
type CapitalBalance struct {
	PenaltyPower float64 `yaml:"penalty_power"` // percent
	PenaltyTurns int     `yaml:"penalty_turns"`
}

// NeutralBalance controls unowned cells.
type NeutralBalance struct {
	Share              float64 `yaml:"share"`
	CaptureProbability float64 `yaml:"capture_probability"`
	Color              string  `yaml:"color"`
}

// DefaultBalance returns the stock tuning.
func DefaultBalance() Balance {
	return Balance{
		K:                     10,
		AttackerAdvantageX:    0.1,
		NeighborSupportWeight: 1.5,
		Overall: OverallBalance{
			Min:     40,
			Max:     99,
			Default: 75,
			Step:    1,
		},
		Form: FormBalance{
			Min:  0.85,
			Max:  1.15,
			Win:  0.03,
			Loss: -0.03,
		},
		Capital: CapitalBalance{
			PenaltyPower: 15,
			PenaltyTurns: 3,
		},
		Neutrals: NeutralBalance{
			Share:              0.15,
			CaptureProbability: 0.3,
			Color:              "#9ca3af",
		},
	}
}

// Validate reports the first inconsistent constant.
func (b Balance) Validate() error {
	switch {
	case b.K <= 0:
		return fmt.Errorf("k must be positive, got %v", b.K)
	case b.NeighborSupportWeight < 0:
		return fmt.Errorf("neighbor support weight must not be negative, got %v", b.NeighborSupportWeight)
	case b.Overall.Min > b.Overall.Max:
		return fmt.Errorf("overall range [%d, %d] is empty", b.Overall.Min, b.Overall.Max)
	case b.Overall.Step < 0:
		return fmt.Errorf("overall step must not be negative, got %d", b.Overall.Step)
	case b.Form.Min <= 0 || b.Form.Min > b.Form.Max:
		return fmt.Errorf("form range [%v, %v] is invalid", b.Form.Min, b.Form.Max)
	case b.Capital.PenaltyPower < 0 || b.Capital.PenaltyPower >= 100:
		return fmt.Errorf("capital penalty power must be in [0, 100), got %v", b.Capital.PenaltyPower)
	case b.Capital.PenaltyTurns < 0:
		return fmt.Errorf("capital penalty turns must not be negative, got %d", b.Capital.PenaltyTurns)
	case b.Neutrals.Share < 0 || b.Neutrals.Share > 1:
		return fmt.Errorf("neutral share must be in [0, 1], got %v", b.Neutrals.Share)
	case b.Neutrals.CaptureProbability < 0 || b.Neutrals.CaptureProbability > 1:
		return fmt.Errorf("neutral capture probability must be in [0, 1], got %v", b.Neutrals.CaptureProbability)
	}
	return nil
}

func (b Balance) clampOverall(v int) int {
	if v < b.Overall.Min {
		return b.Overall.Min
	}
	if v > b.Overall.Max {
		return b.Overall.Max
	}
	return v
}

func (b Balance) clampForm(v float64) float64 {
	if v < b.Form.Min {
		return b.Form.Min
	}
	if v > b.Form.Max {
		return b.Form.Max
	}
	return v
}
