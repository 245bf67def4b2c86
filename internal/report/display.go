package report

import (
	"fmt"

	"github.com/pkg/browser"
)

// Show opens the rendered figure in the desktop's default viewer.
func Show(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
