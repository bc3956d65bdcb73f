package excel

// File types understood by the reader.
const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"
)

// Sheet is the worksheet read first; the first sheet of the workbook is
// used when it does not exist.
const Sheet = "Sheet1"

// RawRow is one spreadsheet row after trimming.
type RawRow []string
