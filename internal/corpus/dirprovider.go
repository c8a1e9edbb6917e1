package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Corpus file names under a DirProvider's data directory.
const (
	DiagnosticsFile = "diagnostics.csv"
	SOPFile         = "sop.csv"
	WorkordersFile  = "workorders.txt"
)

// DirProvider loads corpora from flat files in a data directory:
// diagnostics and SOP entries as header-row CSV, work orders as
// pipe-delimited lines. Files that do not exist load as empty corpora.
type DirProvider struct {
	Dir string
}

func (p *DirProvider) Name() string {
	return "dir:" + p.Dir
}

func (p *DirProvider) Load(kind Kind) ([]Record, error) {
	switch kind {
	case KindDiagnostics:
		return p.loadCSV(DiagnosticsFile)
	case KindSOP:
		return p.loadCSV(SOPFile)
	case KindWorkorders:
		return p.loadWorkorders(WorkordersFile)
	default:
		return nil, fmt.Errorf("unknown corpus kind %q", kind)
	}
}

// loadCSV reads a header-row CSV file into records keyed by column
// name. Row order is preserved.
func (p *DirProvider) loadCSV(name string) ([]Record, error) {
	path := filepath.Join(p.Dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, field := range header {
			if i < len(row) {
				rec[strings.TrimSpace(field)] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// loadWorkorders reads pipe-delimited work-order lines of the form
//
//	asset | issue | 工单: WO-xxxx | 建议: text
//
// Blank lines and # comments are skipped; lines with fewer than four
// columns are ignored. The work-order and advice columns keep only the
// text after their first colon.
func (p *DirProvider) loadWorkorders(name string) ([]Record, error) {
	path := filepath.Join(p.Dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		records = append(records, Record{
			"asset":      parts[0],
			"issue":      parts[1],
			"work_order": afterLabel(parts[2]),
			"advice":     afterLabel(parts[3]),
		})
	}
	return records, nil
}

// afterLabel strips a leading "label:" or "label：" prefix, returning
// the column unchanged when no colon is present.
func afterLabel(column string) string {
	for _, sep := range []string{":", "："} {
		if idx := strings.Index(column, sep); idx >= 0 {
			return strings.TrimSpace(column[idx+len(sep):])
		}
	}
	return column
}
