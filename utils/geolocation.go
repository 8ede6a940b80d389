package utils

import (
	"math"
)

const (
	EarthRadiusKm = 6371.0
	EarthRadiusM  = 6371000.0
	DegToRad      = math.Pi / 180.0
	RadToDeg      = 180.0 / math.Pi
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type GeofenceCircle struct {
	Center Coordinate `json:"center"`
	Radius float64    `json:"radius"` // in meters
}

// CalculateDistance calculates the distance between two coordinates using the Haversine formula
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lon1Rad := lon1 * DegToRad
	lat2Rad := lat2 * DegToRad
	lon2Rad := lon2 * DegToRad

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// IsWithinGeofence checks if a coordinate is within a circular geofence
func IsWithinGeofence(lat, lon float64, geofence GeofenceCircle) bool {
	distance := CalculateDistance(lat, lon, geofence.Center.Latitude, geofence.Center.Longitude)
	return distance <= geofence.Radius
}

// DistanceToSegment computes the minimum distance in meters from point p to
// the segment [a, b]. The projection parameter t is clamped to [0, 1] so
// points beyond either endpoint measure to the nearest endpoint. Uses a
// local equirectangular approximation for the projection, then haversine
// from the projected point; accurate to well under the deviation thresholds
// at route scale.
func DistanceToSegment(p, a, b Coordinate) float64 {
	// Degrees scaled so longitude and latitude are comparable locally.
	cosLat := math.Cos(p.Latitude * DegToRad)
	ax := a.Longitude * cosLat
	ay := a.Latitude
	bx := b.Longitude * cosLat
	by := b.Latitude
	px := p.Longitude * cosLat
	py := p.Latitude

	dx := bx - ax
	dy := by - ay

	t := 0.0
	if lenSq := dx*dx + dy*dy; lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}

	proj := Coordinate{
		Latitude:  a.Latitude + t*(b.Latitude-a.Latitude),
		Longitude: a.Longitude + t*(b.Longitude-a.Longitude),
	}

	return CalculateDistance(p.Latitude, p.Longitude, proj.Latitude, proj.Longitude)
}

// DistanceToPolyline computes the minimum distance in meters from p to any
// segment of the polyline through points (in order). Returns +Inf for fewer
// than two points.
func DistanceToPolyline(p Coordinate, points []Coordinate) float64 {
	if len(points) < 2 {
		return math.Inf(1)
	}

	min := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		if d := DistanceToSegment(p, points[i], points[i+1]); d < min {
			min = d
		}
	}
	return min
}

// IsValidCoordinate checks if latitude and longitude values are valid
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CalculateSpeed calculates speed between two points given the time difference
func CalculateSpeed(lat1, lon1 float64, time1 int64, lat2, lon2 float64, time2 int64) float64 {
	distance := CalculateDistance(lat1, lon1, lat2, lon2)
	timeDiff := float64(time2 - time1) // in seconds

	if timeDiff <= 0 {
		return 0
	}

	return distance / timeDiff // meters per second
}
