package fileutil

import (
	"fmt"
	"path/filepath"

	"github.com/neznayu/harness/internal/models"
)

// DiscoverFixtures walks root recursively and returns every file found, in
// sorted path order, along with the non-fatal errors hit on the way.
func DiscoverFixtures(root string, opts ScanOptions) ([]models.FixtureFile, []error, error) {
	opts.Recursive = true

	scan, err := ScanDirectory(root, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("discover fixtures in %s: %w", root, err)
	}

	files := make([]models.FixtureFile, 0, len(scan.Files))
	for _, path := range scan.Files {
		rel, err := filepath.Rel(scan.Root, path)
		if err != nil {
			scan.Errors = append(scan.Errors, fmt.Errorf("failed to relativize %s: %w", path, err))
			continue
		}

		name := filepath.Base(path)
		files = append(files, models.FixtureFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Name:    name,
			Ext:     filepath.Ext(name),
		})
	}

	return files, scan.Errors, nil
}
