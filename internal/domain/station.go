package domain

import "fmt"

// Represents a fuel station record as returned by a station lookup.
// DistanceFromPoint is the distance (miles) from the probing position.
type FuelStation struct {
	ID                string
	OpisID            string
	RackID            int
	Name              string
	Address           string
	City              string
	State             string
	Price             float64
	Location          Coordinate
	DistanceFromPoint float64
}

// Locality returns the "City, ST, USA" form used for display and geocoding.
func (s FuelStation) Locality() string {
	return fmt.Sprintf("%s, %s, USA", s.City, s.State)
}

// A station placed on the 1-D route timeline.
//
// DistanceFromStart is the cumulative distance of the sample point that
// discovered the station, not the station's projection onto the polyline.
// Two stations found by the same sample point therefore share a position.
type FuelStopCandidate struct {
	FuelStation
	DistanceFromStart float64
	SegmentIndex      int
}

// CandidateIndex maps sample-point index to the candidates found near that
// point, cheapest first. Bucket i corresponds to the i-th sample point.
type CandidateIndex [][]FuelStopCandidate

// Len returns the total number of candidates across all buckets.
func (idx CandidateIndex) Len() int {
	n := 0
	for _, bucket := range idx {
		n += len(bucket)
	}
	return n
}
