package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"fuel-route-service/internal/domain"
	"os"
	"path/filepath"
	"strings"
)

// Fixture representation of a station.
type StationSeed struct {
	ID        string  `json:"id,omitempty"`
	OpisID    string  `json:"opis_id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	RackID    int     `json:"rack_id"`
	Price     float64 `json:"price"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type stationSaver interface {
	SaveStations(ctx context.Context, stations []domain.FuelStation) error
}

type stationLister interface {
	ListStations(ctx context.Context) ([]domain.FuelStation, error)
}

// Populate the station store from a JSON fixture file.
func SeedFromJSON(ctx context.Context, store stationSaver, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed stations: read %q: %w", jsonPath, err)
	}

	var data []StationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed stations: parse json: %w", err)
	}

	rows := make([]domain.FuelStation, 0, len(data))
	for i, item := range data {
		st := item.toStation()

		if strings.TrimSpace(st.Name) == "" {
			return 0, fmt.Errorf("seed stations: item at index %d: name cannot be empty", i+1)
		}
		if st.Price <= 0 {
			return 0, fmt.Errorf("seed stations: item at index %d: invalid price %v", i+1, st.Price)
		}
		if !st.Location.Valid() {
			return 0, fmt.Errorf("seed stations: item at index %d: invalid location %s", i+1, st.Location)
		}
		rows = append(rows, st)
	}

	if err := store.SaveStations(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed stations: %w", err)
	}

	return len(rows), nil
}

// Write every stored station to a JSON fixture file.
func DumpJSON(ctx context.Context, store stationLister, jsonPath string) (int, error) {
	stations, err := store.ListStations(ctx)
	if err != nil {
		return 0, fmt.Errorf("dump stations: %w", err)
	}

	out := make([]StationSeed, 0, len(stations))
	for _, st := range stations {
		out = append(out, seedOf(st))
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("dump stations: encode json: %w", err)
	}

	if dir := filepath.Dir(jsonPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("dump stations: create %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(jsonPath, append(b, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("dump stations: write %q: %w", jsonPath, err)
	}

	return len(out), nil
}

func (s StationSeed) toStation() domain.FuelStation {
	return domain.FuelStation{
		ID:       strings.TrimSpace(s.ID),
		OpisID:   strings.TrimSpace(s.OpisID),
		Name:     strings.TrimSpace(s.Name),
		Address:  strings.TrimSpace(s.Address),
		City:     strings.TrimSpace(s.City),
		State:    strings.ToUpper(strings.TrimSpace(s.State)),
		RackID:   s.RackID,
		Price:    s.Price,
		Location: domain.Coordinate{Lat: s.Latitude, Lon: s.Longitude},
	}
}

func seedOf(st domain.FuelStation) StationSeed {
	return StationSeed{
		ID:        st.ID,
		OpisID:    st.OpisID,
		Name:      st.Name,
		Address:   st.Address,
		City:      st.City,
		State:     st.State,
		RackID:    st.RackID,
		Price:     st.Price,
		Latitude:  st.Location.Lat,
		Longitude: st.Location.Lon,
	}
}
