package excel

import "strings"

// ReaderConfig names the header cells recognised for each column. When the
// first row holds none of them, the file has no header and the first two
// columns are origin and destination.
type ReaderConfig struct {
	OriginHeaders      []string `json:"origin_headers"`
	DestinationHeaders []string `json:"destination_headers"`
}

// DefaultReaderConfig returns the Spanish and English header names
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		OriginHeaders:      []string{"origen", "origin", "from", "estado_origen", "from_state"},
		DestinationHeaders: []string{"destino", "destination", "to", "estado_destino", "to_state"},
	}
}

func matchesAny(cell string, names []string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	for _, n := range names {
		if cell == n {
			return true
		}
	}
	return false
}
