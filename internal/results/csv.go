package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"graphbench/internal/sweep"
)

// WriteTable writes t as CSV. Missing means are written as an empty cell.
func WriteTable(w io.Writer, t *sweep.SweepTable) error {
	cw := csv.NewWriter(w)
	columns := t.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}

	for _, p := range t.Points {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatCell(p, col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes t to path, creating parent directories.
func WriteTableFile(path string, t *sweep.SweepTable) error {
	if err := EnsureOutputDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTable(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// ReadTable parses a CSV written by WriteTable. The swept variable is inferred
// from the header: index, p, or n.
func ReadTable(r io.Reader, name string) (*sweep.SweepTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	if _, ok := index[sweep.FieldDuration]; !ok {
		return nil, fmt.Errorf("csv header %v has no %q column", header, sweep.FieldDuration)
	}

	variable := sweep.VariableSize
	switch {
	case has(index, sweep.FieldIndex):
		variable = sweep.VariableIndex
	case has(index, sweep.FieldProbability):
		variable = sweep.VariableProbability
	case has(index, sweep.FieldSize):
	default:
		return nil, fmt.Errorf("csv header %v has no independent variable column", header)
	}

	table := sweep.NewTable(name, variable, "")
	for line, rec := range records[1:] {
		p, err := parseRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		table.Append(p)
	}
	return table, nil
}

// ReadTableFile reads a table from path, naming it after the file.
func ReadTableFile(path string) (*sweep.SweepTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadTable(f, name)
}

func formatCell(p sweep.SweepPoint, col string) string {
	switch col {
	case sweep.FieldSize:
		return strconv.Itoa(p.N)
	case sweep.FieldIndex:
		return strconv.Itoa(p.Index)
	case sweep.FieldProbability:
		return strconv.FormatFloat(p.P, 'f', -1, 64)
	case sweep.FieldDuration:
		if p.Missing {
			return ""
		}
		return strconv.FormatFloat(p.Mean, 'f', -1, 64)
	}
	return ""
}

func parseRow(rec []string, index map[string]int) (sweep.SweepPoint, error) {
	var p sweep.SweepPoint
	var err error

	cell := func(col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	if v, ok := cell(sweep.FieldSize); ok && v != "" {
		if p.N, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("bad n %q: %w", v, err)
		}
	}
	if v, ok := cell(sweep.FieldIndex); ok && v != "" {
		if p.Index, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("bad index %q: %w", v, err)
		}
	}
	if v, ok := cell(sweep.FieldProbability); ok && v != "" {
		if p.P, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("bad p %q: %w", v, err)
		}
	}

	v, _ := cell(sweep.FieldDuration)
	if v == "" || strings.EqualFold(v, "nan") {
		p.Missing = true
		return p, nil
	}
	if p.Mean, err = strconv.ParseFloat(v, 64); err != nil {
		return p, fmt.Errorf("bad duration %q: %w", v, err)
	}
	return p, nil
}

func has(index map[string]int, col string) bool {
	_, ok := index[col]
	return ok
}
