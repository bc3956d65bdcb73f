package excel

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"gomarkov/internal/markov"
)

// WriteObservations stores observations with an origen/destino header, as
// xlsx or csv depending on the extension of path.
func WriteObservations(path string, observations []markov.Observation) error {
	if FileTypeFor(path) == FileTypeCSV {
		return writeCSV(path, observations)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(Sheet, "A1", &[]string{"origen", "destino"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, o := range observations {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(Sheet, ref, &[]string{o.Origin, o.Destination}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, observations []markov.Observation) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"origen", "destino"}); err != nil {
		return err
	}
	for _, o := range observations {
		if err := w.Write([]string{o.Origin, o.Destination}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
