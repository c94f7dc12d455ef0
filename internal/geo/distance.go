// Package geo computes great-circle distances and answers bounded-radius
// nearby queries over candidate coordinates.
package geo

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Candidate is one coordinate considered by Nearby.
type Candidate struct {
	ID    string
	Point Point
}

// Result is a candidate within radius, annotated with its distance.
type Result struct {
	ID         string
	Point      Point
	DistanceKm float64
}

// Distance returns the great-circle distance in kilometers between two
// points using the spherical law of cosines. The inner cosine argument is
// clamped to [-1, 1]: floating-point rounding can push it just outside the
// Acos domain for identical or antipodal points.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	cosine := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(radians(b.Lon)-radians(a.Lon))
	return earthRadiusKm * math.Acos(clamp(cosine, -1, 1))
}

// Nearby returns the candidates within radiusKm of origin (inclusive),
// ordered by ascending distance. The radius is applied to the computed
// distance, never as a bounding-box pre-filter, so the boundary is exact.
func Nearby(origin Point, radiusKm float64, candidates []Candidate) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		d := Distance(origin, c.Point)
		if d <= radiusKm {
			results = append(results, Result{ID: c.ID, Point: c.Point, DistanceKm: d})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
