package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gomarkov/internal"
	"gomarkov/internal/markov"
)

// DataReader reads origin/destination migrations from Excel or CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a reader for filePath; the type follows the extension
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: FileTypeFor(filePath),
		config:   DefaultReaderConfig(),
		logger:   internal.DefaultLogger,
	}
}

// WithConfig overrides the header names
func (r *DataReader) WithConfig(cfg ReaderConfig) *DataReader {
	r.config = cfg
	return r
}

// WithLogger overrides the logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	r.logger = logger
	return r
}

// FileTypeFor maps a file name to "csv" or "xlsx"
func FileTypeFor(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return FileTypeCSV
	}
	return FileTypeXLSX
}

// LoadObservations reads the whole file. It satisfies ports.ObservationSource.
func (r *DataReader) LoadObservations(ctx context.Context) ([]markov.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", r.filePath, err)
	}
	defer f.Close()

	return r.ReadObservations(f)
}

// ReadObservations parses an already opened stream of the reader's file type,
// e.g. a multipart upload.
func (r *DataReader) ReadObservations(src io.Reader) ([]markov.Observation, error) {
	start := time.Now()

	var (
		rows []RawRow
		err  error
	)
	switch r.fileType {
	case FileTypeCSV:
		rows, err = readCSVRows(src)
	case FileTypeXLSX:
		rows, err = readExcelRows(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	obs, err := r.observationsFromRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d observations)",
		strings.ToUpper(r.fileType), float64(time.Since(start).Nanoseconds())/1e6, len(obs))
	return obs, nil
}

// readExcelRows reads Sheet1, or the first sheet when Sheet1 is missing
func readExcelRows(src io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := Sheet
	if idx, err := f.GetSheetIndex(Sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return toRawRows(rows), nil
}

func readCSVRows(src io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return toRawRows(rows), nil
}

func toRawRows(rows [][]string) []RawRow {
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		raw := make(RawRow, len(row))
		for j, cell := range row {
			raw[j] = strings.TrimSpace(cell)
		}
		out[i] = raw
	}
	return out
}

// observationsFromRows locates the origin/destination columns and turns
// every non-blank row into a pair. Blank rows are skipped.
func (r *DataReader) observationsFromRows(rows []RawRow) ([]markov.Observation, error) {
	originCol, destCol, dataStart := 0, 1, 0
	if len(rows) > 0 {
		if o, d, ok := r.headerColumns(rows[0]); ok {
			originCol, destCol, dataStart = o, d, 1
		}
	}

	pairs := make([][]string, 0, len(rows))
	for i := dataStart; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		pairs = append(pairs, []string{cell(row, originCol), cell(row, destCol)})
	}

	obs, err := markov.ObservationsFromPairs(pairs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.filePath, err)
	}
	return obs, nil
}

func (r *DataReader) headerColumns(row RawRow) (origin, dest int, ok bool) {
	origin, dest = -1, -1
	for j, c := range row {
		switch {
		case origin < 0 && matchesAny(c, r.config.OriginHeaders):
			origin = j
		case dest < 0 && matchesAny(c, r.config.DestinationHeaders):
			dest = j
		}
	}
	return origin, dest, origin >= 0 && dest >= 0
}

func cell(row RawRow, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}

func isBlank(row RawRow) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
