package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/storefront/internal/config"
)

// ExistsError reports a config file that init would overwrite.
type ExistsError struct {
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

// CheckExisting returns an *ExistsError if dir already holds storefront.yml.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return &ExistsError{Path: path}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	return nil
}
