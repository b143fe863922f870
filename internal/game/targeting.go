package game

import (
	"fmt"
	"math"

	"club-conquest/internal/geom"
)

// fallbackToleranceDeg is how far off the requested direction a neighbor may
// lie and still be picked by the fallback pass.
const fallbackToleranceDeg = 60

// alongTolerance makes near-equal projections tie so the perpendicular
// distance decides.
const alongTolerance = 1e-6

// Target is the pair of cells involved in an attack.
type Target struct {
	FromCellID int `json:"fromCellId"`
	ToCellID   int `json:"toCellId"`
}

// Origin returns the attacker's territorial centroid: the mean of its cells'
// centroids.
func (b *Board) Origin(teamID int) (geom.Point, bool) {
	ids := b.CellsOwnedBy(teamID)
	if len(ids) == 0 {
		return geom.Point{}, false
	}
	var sum geom.Point
	for _, id := range ids {
		sum = sum.Add(b.Cells[id].Centroid)
	}
	return sum.Scale(1 / float64(len(ids))), true
}

// ResolveTarget casts a ray from the attacker's centroid in the given
// direction and returns the first enemy or neutral cell it strikes. It never
// mutates the board and uses no randomness.
func (b *Board) ResolveTarget(attackerID int, dir Direction) (Target, error) {
	if _, ok := b.Team(attackerID); !ok {
		return Target{}, fmt.Errorf("%w: %d", ErrUnknownTeam, attackerID)
	}
	if !dir.Valid() {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidDirection, string(dir))
	}

	origin, ok := b.Origin(attackerID)
	if !ok {
		return Target{}, ErrDeadAttacker
	}

	ray := geom.Ray{Origin: origin, Dir: dir.Vector()}
	if target, ok := b.boundaryTarget(attackerID, ray); ok {
		return target, nil
	}
	if target, ok := b.neighborTarget(attackerID, ray, dir.Angle()); ok {
		return target, nil
	}
	return Target{}, ErrNoValidTarget
}

// boundaryTarget finds the closest attacker boundary edge hit by the ray.
func (b *Board) boundaryTarget(attackerID int, ray geom.Ray) (Target, bool) {
	bestT := math.Inf(1)
	var best Target
	found := false

	for _, border := range b.borders {
		ownerA := b.Cells[border.CellA].OwnerTeamID
		ownerB := b.Cells[border.CellB].OwnerTeamID
		// Exactly one side must belong to the attacker.
		if (ownerA == attackerID) == (ownerB == attackerID) {
			continue
		}
		t, _, hit := ray.Intersect(border.Edge)
		if !hit || t >= bestT {
			continue
		}
		bestT = t
		found = true
		if ownerA == attackerID {
			best = Target{FromCellID: border.CellA, ToCellID: border.CellB}
		} else {
			best = Target{FromCellID: border.CellB, ToCellID: border.CellA}
		}
	}
	return best, found
}

// neighborTarget is the fallback when no boundary edge lies on the ray: the
// non-attacker neighbor in front of the origin, within the angular tolerance,
// that is closest along the ray and then closest to it.
func (b *Board) neighborTarget(attackerID int, ray geom.Ray, deg float64) (Target, bool) {
	bestAlong := math.Inf(1)
	bestPerp := math.Inf(1)
	var best Target
	found := false

	for _, fromID := range b.CellsOwnedBy(attackerID) {
		for _, nID := range b.Cells[fromID].Neighbors {
			nb, ok := b.Cell(nID)
			if !ok || nb.OwnerTeamID == attackerID {
				continue
			}
			d := nb.Centroid.Sub(ray.Origin)
			along := d.Dot(ray.Dir)
			if along <= 0 {
				continue
			}
			if geom.AngleDiff(geom.Degrees(d), deg) > fallbackToleranceDeg {
				continue
			}
			perp := math.Abs(d.Cross(ray.Dir))
			if along < bestAlong-alongTolerance ||
				(math.Abs(along-bestAlong) < alongTolerance && perp < bestPerp) {
				bestAlong = along
				bestPerp = perp
				best = Target{FromCellID: fromID, ToCellID: nb.ID}
				found = true
			}
		}
	}
	return best, found
}
