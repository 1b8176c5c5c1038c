package geo

// MetersPerMile is the conversion factor used against the metric
// geography columns in the store.
const MetersPerMile = 1609.34

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MilesToMeters converts a client-supplied radius in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}
