package diagfmt

import (
	"fmt"
	"io"

	"prosecheck/internal/diag"
	"prosecheck/internal/driver"
)

// Short writes one line per diagnostic in the stable golden format of
// diag.FormatShort, suited to grep and test fixtures.
func Short(w io.Writer, results []driver.FileResult, mode PathMode, baseDir string) {
	for _, res := range results {
		path := formatPath(res.Path, mode, baseDir)
		if res.Err != nil {
			fmt.Fprintf(w, "error - %s %s\n", path, res.Err)
			continue
		}
		if out := diag.FormatShort(path, res.Diagnostics); out != "" {
			fmt.Fprintln(w, out)
		}
	}
}
