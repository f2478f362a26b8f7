package report

import (
	"fmt"
	"io"
	"os"
)

// WriteFile writes the report to path, or to stdout when path is "-"
func WriteFile(path string, stdout io.Writer, in *Input) error {
	if path == "-" {
		return Write(stdout, in)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := Write(f, in); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
