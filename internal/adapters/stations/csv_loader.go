package stations

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/ports"
	"io"
	"log"
	"strconv"
	"strings"
)

// Columns of the OPIS truck stop price sheet.
const (
	colOpisID  = "OPIS Truckstop ID"
	colName    = "Truckstop Name"
	colAddress = "Address"
	colCity    = "City"
	colState   = "State"
	colRackID  = "Rack ID"
	colPrice   = "Retail Price"
)

var requiredColumns = []string{colOpisID, colName, colAddress, colCity, colState, colRackID, colPrice}

// LoadStats summarizes a CSV load.
type LoadStats struct {
	Rows           int
	Loaded         int
	GeocodeFailed  int
	ParseFailed    int
	CitiesGeocoded int
}

// LoadCSV reads an OPIS price sheet and geocodes each station to its city.
//
// Each distinct "City, ST, USA" locality is geocoded once. Rows that cannot be
// parsed or whose city cannot be geocoded are skipped and counted. Geocoder
// failures other than "not found" abort the load.
func LoadCSV(ctx context.Context, r io.Reader, geocoder ports.Geocoder) ([]domain.FuelStation, LoadStats, error) {
	var stats LoadStats

	if geocoder == nil {
		return nil, stats, errors.New("load csv: geocoder is nil")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("load csv: read header: %w", err)
	}

	idx := makeIndex(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, stats, fmt.Errorf("load csv: missing column %q: %w", col, domain.ErrInvalidInput)
		}
	}

	located := make(map[string]*domain.Coordinate)
	var out []domain.FuelStation

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		stats.Rows++
		if err != nil {
			stats.ParseFailed++
			log.Printf("op=stations.LoadCSV row=%d err=%v", stats.Rows, err)
			continue
		}

		st, err := parseRecord(record, idx)
		if err != nil {
			stats.ParseFailed++
			log.Printf("op=stations.LoadCSV row=%d err=%v", stats.Rows, err)
			continue
		}

		locality := st.Locality()
		loc, seen := located[locality]
		if !seen {
			c, err := geocoder.Geocode(ctx, locality)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				log.Printf("op=stations.LoadCSV row=%d locality=%q geocode=not_found", stats.Rows, locality)
			case err != nil:
				return nil, stats, fmt.Errorf("load csv: geocode %q: %w", locality, err)
			default:
				loc = &c
				stats.CitiesGeocoded++
			}
			located[locality] = loc
		}
		if loc == nil {
			stats.GeocodeFailed++
			continue
		}

		st.Location = *loc
		out = append(out, st)
		stats.Loaded++
	}

	return out, stats, nil
}

func parseRecord(record []string, idx map[string]int) (domain.FuelStation, error) {
	price, err := strconv.ParseFloat(getField(record, idx, colPrice), 64)
	if err != nil || price <= 0 {
		return domain.FuelStation{}, fmt.Errorf("invalid %s %q", colPrice, getField(record, idx, colPrice))
	}

	rackID, err := strconv.Atoi(getField(record, idx, colRackID))
	if err != nil {
		return domain.FuelStation{}, fmt.Errorf("invalid %s %q", colRackID, getField(record, idx, colRackID))
	}

	st := domain.FuelStation{
		OpisID:  getField(record, idx, colOpisID),
		Name:    getField(record, idx, colName),
		Address: getField(record, idx, colAddress),
		City:    getField(record, idx, colCity),
		State:   strings.ToUpper(getField(record, idx, colState)),
		RackID:  rackID,
		Price:   price,
	}
	if st.Name == "" || st.City == "" || len(st.State) != 2 {
		return domain.FuelStation{}, fmt.Errorf("incomplete station %q in %q, %q", st.Name, st.City, st.State)
	}
	return st, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
