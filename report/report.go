package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"pricelist-extractor/internal/types"
)

// Result is a fully read query result; NULL cells are invalid NullStrings
type Result struct {
	Columns []string
	Rows    [][]sql.NullString
}

// Written describes one CSV produced by Generate
type Written struct {
	Path string
	Rows int
}

// Generate runs the fixed reports against db and writes their CSVs into outdir
func Generate(ctx context.Context, db *sql.DB, outdir string, logger types.Logger) ([]Written, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []Written
	for _, q := range []Query{staleAutoFix, selectedBrandsIncrease, surchargeBand} {
		res, err := Fetch(ctx, db, q)
		if err != nil {
			return written, err
		}
		w, err := writeCSV(filepath.Join(outdir, q.Name+".csv"), res)
		if err != nil {
			return written, err
		}
		logger.Infof("[OK] CSV -> %s (%d rows)", w.Path, w.Rows)
		written = append(written, w)
	}

	summary, err := Fetch(ctx, db, supplierSummary)
	if err != nil {
		return written, err
	}
	averages, err := Fetch(ctx, db, brandAverages)
	if err != nil {
		return written, err
	}

	combined := Combine(summaryColumns,
		Section{Name: supplierSummary.Name, Result: summary},
		Section{Name: brandAverages.Name, Result: averages},
	)
	w, err := writeCSV(filepath.Join(outdir, supplierSummary.Name+".csv"), combined)
	if err != nil {
		return written, err
	}
	logger.Infof("[OK] CSV -> %s (%d rows)", w.Path, w.Rows)
	return append(written, w), nil
}

// Fetch runs q and reads every row as strings
func Fetch(ctx context.Context, db *sql.DB, q Query) (Result, error) {
	rows, err := db.QueryContext(ctx, q.SQL)
	if err != nil {
		return Result{}, fmt.Errorf("query %s failed: %w", q.Name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query %s: %w", q.Name, err)
	}

	res := Result{Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Result{}, fmt.Errorf("query %s: failed to scan row: %w", q.Name, err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("query %s: %w", q.Name, err)
	}
	return res, nil
}

// Section is a named result stacked into a combined report
type Section struct {
	Name   string
	Result Result
}

// Combine stacks sections under columns. The first column holds the section
// name; columns a section lacks are left NULL.
func Combine(columns []string, sections ...Section) Result {
	out := Result{Columns: columns}
	for _, s := range sections {
		index := make(map[string]int, len(s.Result.Columns))
		for i, c := range s.Result.Columns {
			index[c] = i
		}
		for _, row := range s.Result.Rows {
			combined := make([]sql.NullString, len(columns))
			combined[0] = sql.NullString{String: s.Name, Valid: true}
			for i, c := range columns[1:] {
				if j, ok := index[c]; ok && j < len(row) {
					combined[i+1] = row[j]
				}
			}
			out.Rows = append(out.Rows, combined)
		}
	}
	return out
}

func writeCSV(path string, res Result) (Written, error) {
	f, err := os.Create(path)
	if err != nil {
		return Written{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(res.Columns); err != nil {
		return Written{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	record := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i].Valid {
				record[i] = row[i].String
			}
		}
		if err := w.Write(record); err != nil {
			return Written{}, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Written{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Written{Path: path, Rows: len(res.Rows)}, nil
}
