package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbability(t *testing.T) {
	t.Run("stronger attacker is favored", func(t *testing.T) {
		p := Probability(85, 75, 10, 0.1)
		require.Greater(t, p, 0.5)
		require.InDelta(t, Sigmoid(1.1), p, 1e-12)
	})

	t.Run("even sides without bias", func(t *testing.T) {
		require.Equal(t, 0.5, Probability(75, 75, 10, 0))
	})

	t.Run("bias favors the attacker", func(t *testing.T) {
		require.Greater(t, Probability(75, 75, 10, 0.1), 0.5)
	})

	t.Run("strictly inside the unit interval", func(t *testing.T) {
		for _, diff := range []float64{-1e6, -1000, 0, 1000, 1e6} {
			p := Probability(diff, 0, 1, 0)
			require.Greater(t, p, 0.0)
			require.Less(t, p, 1.0)
		}
	})

	t.Run("monotone in the power difference", func(t *testing.T) {
		prev := 0.0
		for a := 40.0; a <= 100; a += 5 {
			p := Probability(a, 70, 10, 0.1)
			require.Greater(t, p, prev)
			prev = p
		}
	})
}

func TestCombatSupport(t *testing.T) {
	c := Combat{Balance: DefaultBalance()}
	b := rowBoard(t, 0, 0, 0, 1)

	require.InDelta(t, 3.0, c.Support(b, 0, 1), 1e-12)
	require.InDelta(t, 1.5, c.Support(b, 0, 2), 1e-12)
	require.InDelta(t, 0.0, c.Support(b, 1, 3), 1e-12)
	require.InDelta(t, 0.0, c.Support(b, 0, 99), 1e-12)
}

func TestCombatEffectiveForm(t *testing.T) {
	c := Combat{Balance: DefaultBalance()}
	team := &Team{Form: 1, CapitalPenaltyUntilTurn: 4}

	require.InDelta(t, 0.85, c.EffectiveForm(team, 3), 1e-12)
	require.InDelta(t, 1.0, c.EffectiveForm(team, 4), 1e-12)
	require.InDelta(t, 1.0, c.EffectiveForm(&Team{Form: 1}, 0), 1e-12)
}

func TestCombatOdds(t *testing.T) {
	c := Combat{Balance: DefaultBalance()}

	t.Run("team battle", func(t *testing.T) {
		b := rowBoard(t, 0, 0, 1, 1)
		b.Teams[0].Overall = 85
		target, err := b.ResolveTarget(0, East)
		require.NoError(t, err)

		odds := c.Odds(b, 0, target)
		require.False(t, odds.Neutral)
		require.Equal(t, 1, odds.DefenderTeamID)
		// 85 + one supporting neighbor against 75 + one supporting neighbor.
		require.InDelta(t, 86.5, odds.AttackPower, 1e-9)
		require.InDelta(t, 76.5, odds.DefensePower, 1e-9)
		require.InDelta(t, Sigmoid(1.1), odds.P, 1e-12)
	})

	t.Run("neutral capture uses the fixed chance", func(t *testing.T) {
		b := rowBoard(t, 0, Neutral, 1)
		target, err := b.ResolveTarget(0, East)
		require.NoError(t, err)

		odds := c.Odds(b, 0, target)
		require.True(t, odds.Neutral)
		require.Equal(t, Neutral, odds.DefenderTeamID)
		require.Equal(t, 0.3, odds.P)
	})

	t.Run("capital penalty weakens the defender", func(t *testing.T) {
		b := rowBoard(t, 0, 1)
		target, err := b.ResolveTarget(0, East)
		require.NoError(t, err)
		base := c.Odds(b, 0, target).P

		b.Teams[1].CapitalPenaltyUntilTurn = 2
		penalized := c.Odds(b, 0, target)
		require.InDelta(t, 75*0.85, penalized.DefensePower, 1e-9)
		require.Greater(t, penalized.P, base)
		require.False(t, math.IsNaN(penalized.P))
	})
}
