package game

import (
	"fmt"
	"strings"

	"club-conquest/internal/geom"
)

// Direction is one of the eight compass points.
type Direction string

const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

// Directions lists every compass point, clockwise from north.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// directionAngles maps compass points to degrees, counter-clockwise from east
// with y pointing up.
var directionAngles = map[Direction]float64{
	East:      0,
	NorthEast: 45,
	North:     90,
	NorthWest: 135,
	West:      180,
	SouthWest: -135,
	South:     -90,
	SouthEast: -45,
}

// ParseDirection parses a compass point, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid returns true for the eight compass points.
func (d Direction) Valid() bool {
	_, ok := directionAngles[d]
	return ok
}

// Angle returns the direction in degrees.
func (d Direction) Angle() float64 {
	return directionAngles[d]
}

// Vector returns the unit vector for the direction.
func (d Direction) Vector() geom.Point {
	return geom.Unit(d.Angle())
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	return string(d)
}
