// Package geom contains the stateless 2D primitives used for targeting:
// centroids, canonical edge keys and ray/segment intersection.
//
// All angles use the math convention: y grows upwards and angles increase
// counter-clockwise from the positive x axis.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Epsilon is the determinant below which a ray and a segment are treated as parallel.
const Epsilon = 1e-9

// Point is a 2D point or vector.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the 3D cross product of p and q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// String formats p as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// MarshalJSON encodes p as a two element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two element array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Centroid returns the arithmetic mean of the given points.
// This is not the area-weighted polygon centroid.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// Unit returns the unit vector pointing at deg degrees.
func Unit(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{math.Cos(rad), math.Sin(rad)}
}

// Degrees returns the angle of v in degrees, in (-180, 180].
func Degrees(v Point) float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// AngleDiff returns the absolute difference between two angles in degrees,
// normalised to [0, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Key identifies an edge independently of the direction it is traversed in.
type Key string

// EdgeKey returns the canonical key for the edge between a and b.
// Coordinates are compared exactly, so both cells sharing an edge must use
// identical vertices.
func EdgeKey(a, b Point) Key {
	ka, kb := pointKey(a), pointKey(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return Key(ka + "|" + kb)
}

func pointKey(p Point) string {
	return strconv.FormatFloat(p.X, 'g', -1, 64) + "," + strconv.FormatFloat(p.Y, 'g', -1, 64)
}

// Segment is a straight edge between two points.
type Segment struct {
	A Point
	B Point
}

// Edges returns the closed sequence of edges of a polygon, including the edge
// from the last vertex back to the first.
func Edges(polygon []Point) []Segment {
	if len(polygon) < 2 {
		return nil
	}
	edges := make([]Segment, len(polygon))
	for i := range polygon {
		edges[i] = Segment{A: polygon[i], B: polygon[(i+1)%len(polygon)]}
	}
	return edges
}

// Ray is a half-line starting at Origin and heading along Dir.
type Ray struct {
	Origin Point
	Dir    Point
}

// Intersect tests the ray against seg. On a hit it returns the ray parameter t
// (distance along Dir in units of |Dir|) and the segment parameter s in [0, 1].
// Parallel and collinear segments never hit.
func (r Ray) Intersect(seg Segment) (t, s float64, ok bool) {
	edge := seg.B.Sub(seg.A)
	denom := r.Dir.Cross(edge)
	if math.Abs(denom) < Epsilon {
		return 0, 0, false
	}
	ac := seg.A.Sub(r.Origin)
	t = ac.Cross(edge) / denom
	s = ac.Cross(r.Dir) / denom
	if t < 0 || s < 0 || s > 1 {
		return 0, 0, false
	}
	return t, s, true
}
