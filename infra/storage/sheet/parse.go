package sheet

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skyops/fleetmatch/core/model"
)

// record is one data row with its header mapping. Lookups are
// case-insensitive and whitespace-trimmed; unknown columns read as empty.
type record struct {
	cols   map[string]int
	fields []string
}

func (r record) get(name string) string {
	i, ok := r.cols[normalize(name)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) getList(name string) []string {
	raw := r.get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r record) getFloat(name string) float64 {
	raw := r.get(name)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func (r record) getDate(name string) time.Time {
	raw := r.get(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// readRows parses the CSV file into records. A missing file yields no rows.
func readRows(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	header, err := rd.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalize(h)] = i
	}
	var rows []record
	for {
		fields, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record{cols: cols, fields: fields})
	}
	return rows, nil
}

func joinList(vals []string) string {
	return strings.Join(vals, ", ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
