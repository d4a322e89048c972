package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ImportOptions configures a spreadsheet import.
type ImportOptions struct {
	Sheet   string           // sheet name; empty selects the active sheet
	Version string           // data version stamp written to the payload
	Now     func() time.Time // clock for the generated date; nil uses time.Now
}

// DefaultDataVersion is the version stamp used when none is given.
const DefaultDataVersion = "0.1.0"

var digitRun = regexp.MustCompile(`\d+`)

// ImportWorkbook reads a word spreadsheet and converts it into a Payload.
// The first row holds the headers. Blank rows and rows without a word are
// skipped; ids are assigned sequentially from 1.
func ImportWorkbook(path string, opts ImportOptions) (*Payload, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	version := opts.Version
	if version == "" {
		version = DefaultDataVersion
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	p := &Payload{
		Version:   version,
		Generated: now().Format("2006-01-02"),
		Sheet:     sheet,
		Words:     []Word{},
	}
	if len(rows) == 0 {
		return p, nil
	}

	headers := rows[0]
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := make(map[string]any, len(headers))
		for i, h := range headers {
			key := h
			if strings.TrimSpace(key) == "" {
				key = fmt.Sprintf("col%d", i+1)
			}
			if i < len(row) && row[i] != "" {
				rec[key] = row[i]
			} else {
				rec[key] = nil
			}
		}

		ord := strings.TrimSpace(field(rec, "Ord", "ord"))
		if ord == "" {
			continue
		}

		p.Words = append(p.Words, Word{
			ID:           len(p.Words) + 1,
			Ord:          ord,
			Level:        ParseLevel(field(rec, "Niveau (1-30)", "Niveau", "niveau")),
			Phase:        Text(field(rec, "Fase")),
			Letters:      Text(field(rec, "Bogstaver")),
			Syllables:    Text(field(rec, "Stavelser")),
			Regularity:   Text(field(rec, "Lydrethed")),
			Pattern:      Text(field(rec, "Stavemønster")),
			Morphology:   Text(field(rec, "Morfologi")),
			WordClass:    Text(field(rec, "Ordklasse")),
			Category:     Text(field(rec, "Interessekategori")),
			DyslexiaRisk: Text(field(rec, "Ordblind-risiko (0-3)", "Ordblind-risiko")),
			DyslexiaType: Text(field(rec, "Ordblind-type")),
			Frequency:    Text(field(rec, "Hyppighed")),
			Comment:      Text(field(rec, "Kommentar")),
			Raw:          rec,
		})
	}
	p.Count = len(p.Words)
	return p, nil
}

// WriteJSON writes p as indented UTF-8 JSON.
func WriteJSON(w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// ParseLevel reads a skill level from a spreadsheet cell: a plain integer,
// a number with a fraction (truncated), or the first run of digits in the
// text. Anything else is no level.
func ParseLevel(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	if m := digitRun.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return &n
		}
	}
	return nil
}

// field returns the first non-empty value among keys.
func field(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
