// Package record implements the tabular timeseries contract shared with the
// external analysis dashboard: CSV and JSON sequences of
// {t, healthy, infected, recovered, vaccinated} records, with an optional
// asymptomatic column. It is the importing collaborator: parsing happens here,
// the engine only ever receives reconstructed samples.
package record

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lixenwraith/contagion/engine"
)

// Column order of the full export shape.
var columns = []string{"t", "healthy", "infected", "asymptomatic", "recovered", "vaccinated"}

// Column order of the five-field dashboard shape.
var dashboardColumns = []string{"t", "healthy", "infected", "recovered", "vaccinated"}

// ReadCSV parses a header-driven CSV timeseries. Unknown columns are ignored,
// a missing asymptomatic column reads as zero, and unparsable numeric fields
// coerce to zero rather than failing the import. A header without a t column
// is an error.
func ReadCSV(r io.Reader) ([]engine.Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // ragged rows read as missing fields, not errors

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("record: empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("record: read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["t"]; !ok {
		return nil, fmt.Errorf("record: CSV header missing t column")
	}

	field := func(row []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return 0
		}
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return 0 // tolerant coercion, dashboard behavior
		}
		return v
	}

	var samples []engine.Sample
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record: read CSV row: %w", err)
		}
		samples = append(samples, engine.Sample{
			T:            field(row, "t"),
			Healthy:      int(field(row, "healthy")),
			Infected:     int(field(row, "infected")),
			Asymptomatic: int(field(row, "asymptomatic")),
			Recovered:    int(field(row, "recovered")),
			Vaccinated:   int(field(row, "vaccinated")),
		})
	}
	return samples, nil
}

// ReadJSON parses a JSON array of record objects with the same tolerance as
// ReadCSV: missing fields are zero and non-numeric values coerce to zero.
func ReadJSON(r io.Reader) ([]engine.Sample, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("record: decode JSON: %w", err)
	}

	field := func(rec map[string]any, name string) float64 {
		v, ok := rec[name]
		if !ok {
			return 0
		}
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return 0
			}
			return f
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return 0
			}
			return f
		default:
			return 0
		}
	}

	samples := make([]engine.Sample, 0, len(raw))
	for _, rec := range raw {
		samples = append(samples, engine.Sample{
			T:            field(rec, "t"),
			Healthy:      int(field(rec, "healthy")),
			Infected:     int(field(rec, "infected")),
			Asymptomatic: int(field(rec, "asymptomatic")),
			Recovered:    int(field(rec, "recovered")),
			Vaccinated:   int(field(rec, "vaccinated")),
		})
	}
	return samples, nil
}

// WriteCSV emits the full six-column shape.
func WriteCSV(w io.Writer, samples []engine.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("record: write CSV header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			formatTime(s.T),
			strconv.Itoa(s.Healthy),
			strconv.Itoa(s.Infected),
			strconv.Itoa(s.Asymptomatic),
			strconv.Itoa(s.Recovered),
			strconv.Itoa(s.Vaccinated),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("record: write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDashboardCSV emits the five-column dashboard shape, folding
// asymptomatic carriers into the infected column.
func WriteDashboardCSV(w io.Writer, samples []engine.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dashboardColumns); err != nil {
		return fmt.Errorf("record: write CSV header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			formatTime(s.T),
			strconv.Itoa(s.Healthy),
			strconv.Itoa(s.Infected + s.Asymptomatic),
			strconv.Itoa(s.Recovered),
			strconv.Itoa(s.Vaccinated),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("record: write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON emits the record array shape the dashboard imports.
func WriteJSON(w io.Writer, samples []engine.Sample) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(samples); err != nil {
		return fmt.Errorf("record: encode JSON: %w", err)
	}
	return nil
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
