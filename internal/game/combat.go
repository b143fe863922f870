package game

import (
	"math"

	"club-conquest/internal/random"
)

// Combat computes battle odds from team ratings, form and local support.
type Combat struct {
	Balance Balance
}

// Odds is a preview of a battle before the roll.
type Odds struct {
	Target         Target  `json:"target"`
	DefenderTeamID int     `json:"defenderTeamId"`
	Neutral        bool    `json:"neutral"`
	AttackPower    float64 `json:"attackPower"`
	DefensePower   float64 `json:"defensePower"`
	P              float64 `json:"p"`
}

// Sigmoid is the logistic function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Probability returns the attacker's win probability. The result is kept
// strictly inside (0, 1) even where float64 would round the logistic to an
// endpoint.
func Probability(attackPower, defensePower, k, bias float64) float64 {
	p := Sigmoid((attackPower-defensePower)/k + bias)
	switch {
	case p <= 0:
		return math.Nextafter(0, 1)
	case p >= 1:
		return math.Nextafter(1, 0)
	}
	return p
}

// EffectiveForm returns the team's form, reduced while its capital penalty is
// active.
func (c Combat) EffectiveForm(t *Team, turn int) float64 {
	if t.InCapitalPenalty(turn) {
		return t.Form * (1 - c.Balance.Capital.PenaltyPower/100)
	}
	return t.Form
}

// Support returns the bonus a team gets at a cell: the number of that cell's
// neighbors it owns, times the support weight.
func (c Combat) Support(b *Board, teamID, cellID int) float64 {
	cell, ok := b.Cell(cellID)
	if !ok {
		return 0
	}
	count := 0
	for _, n := range cell.Neighbors {
		if nb, ok := b.Cell(n); ok && nb.OwnerTeamID == teamID {
			count++
		}
	}
	return float64(count) * c.Balance.NeighborSupportWeight
}

// Power returns a side's effective power when acting from cellID.
func (c Combat) Power(b *Board, t *Team, cellID int) float64 {
	return float64(t.Overall)*c.EffectiveForm(t, b.Turn) + c.Support(b, t.ID, cellID)
}

// Odds computes the win probability for an attack on a resolved target.
func (c Combat) Odds(b *Board, attackerID int, target Target) Odds {
	defenderID := b.Cells[target.ToCellID].OwnerTeamID
	odds := Odds{Target: target, DefenderTeamID: defenderID}

	if defenderID == Neutral {
		odds.Neutral = true
		odds.P = c.Balance.Neutrals.CaptureProbability
		return odds
	}

	attacker, _ := b.Team(attackerID)
	defender, _ := b.Team(defenderID)
	odds.AttackPower = c.Power(b, attacker, target.FromCellID)
	odds.DefensePower = c.Power(b, defender, target.ToCellID)
	odds.P = Probability(odds.AttackPower, odds.DefensePower, c.Balance.K, c.Balance.AttackerAdvantageX)
	return odds
}

// battleKey identifies the roll stream of a team-vs-team battle.
func battleKey(seed string, turn, attackerID, cellID int) string {
	return random.Key(seed, "match", turn, attackerID, cellID)
}

// neutralKey identifies the roll stream of a neutral capture attempt.
func neutralKey(seed string, turn, attackerID, cellID int) string {
	return random.Key(seed, "neutral", turn, attackerID, cellID)
}
