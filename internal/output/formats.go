// internal/output/formats.go
package output

// Output formats.
const (
	FormatTSV   = "tsv"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Formats lists the accepted --output values.
var Formats = []string{FormatTSV, FormatCSV, FormatJSON, FormatJSONL}

// Valid reports whether f is a known format.
func Valid(f string) bool {
	for _, x := range Formats {
		if x == f {
			return true
		}
	}
	return false
}
