package game

// Team represents a competing faction.
type Team struct {
	ID                      int     `json:"id"`
	Name                    string  `json:"name"`
	Color                   string  `json:"color"`
	Alive                   bool    `json:"alive"`
	Overall                 int     `json:"overall"`
	Form                    float64 `json:"form"`
	CapitalCellID           int     `json:"capitalCellId"`
	CapitalPenaltyUntilTurn int     `json:"capitalPenaltyUntilTurn,omitempty"`
}

// InCapitalPenalty returns true while the capital penalty window is open.
func (t *Team) InCapitalPenalty(turn int) bool {
	return turn < t.CapitalPenaltyUntilTurn
}

// recordWin applies the rating and form changes for a won battle.
func (t *Team) recordWin(b Balance) {
	t.Overall = b.clampOverall(t.Overall + b.Overall.Step)
	t.Form = b.clampForm(t.Form + b.Form.Win)
}

// recordLoss applies the rating and form changes for a lost battle.
func (t *Team) recordLoss(b Balance) {
	t.Overall = b.clampOverall(t.Overall - b.Overall.Step)
	t.Form = b.clampForm(t.Form + b.Form.Loss)
}

// armCapitalPenalty opens the penalty window after the battle resolved at turn.
func (t *Team) armCapitalPenalty(turn int, b Balance) {
	t.CapitalPenaltyUntilTurn = turn + 1 + b.Capital.PenaltyTurns
}
