package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neznayu/harness/internal/models"
)

// RewriteOptions configures RewriteExtensions.
type RewriteOptions struct {
	// DryRun plans the renames without touching the filesystem
	DryRun bool
	// OnRename, if set, is called for every planned or applied rename
	OnRename func(models.RenameRecord)
}

// RewriteResult lists what RewriteExtensions did.
type RewriteResult struct {
	Renamed []models.RenameRecord
	// Errors holds non-fatal problems: unreadable entries, refused overwrites,
	// failed renames. Files behind these errors keep their old extension.
	Errors []error
}

// ErrTargetExists is reported when a rename would replace an existing file.
var ErrTargetExists = errors.New("target already exists")

// RewriteExtensions renames every file under root whose extension is oldExt
// so that it ends in newExt instead. Extensions may be given with or without
// the leading dot and match case-sensitively. Files with any other extension
// are left untouched, which makes a second run a no-op.
func RewriteExtensions(root, oldExt, newExt string, opts RewriteOptions) (*RewriteResult, error) {
	oldExt = NormalizeExt(oldExt)
	newExt = NormalizeExt(newExt)
	if oldExt == "" || newExt == "" {
		return nil, fmt.Errorf("both extensions are required (got %q -> %q)", oldExt, newExt)
	}
	if oldExt == newExt {
		return &RewriteResult{}, nil
	}

	scan, err := ScanDirectory(root, ScanOptions{Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("rewrite extensions in %s: %w", root, err)
	}

	result := &RewriteResult{Errors: scan.Errors}

	for _, oldPath := range scan.Files {
		if filepath.Ext(oldPath) != oldExt {
			continue
		}

		newPath := strings.TrimSuffix(oldPath, oldExt) + newExt
		if _, err := os.Lstat(newPath); err == nil {
			result.Errors = append(result.Errors, fmt.Errorf("rename %s: %w: %s", oldPath, ErrTargetExists, newPath))
			continue
		}

		record := models.RenameRecord{OldPath: oldPath, NewPath: newPath}
		if !opts.DryRun {
			if err := os.Rename(oldPath, newPath); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("rename %s: %w", oldPath, err))
				continue
			}
			record.Applied = true
		}

		result.Renamed = append(result.Renamed, record)
		if opts.OnRename != nil {
			opts.OnRename(record)
		}
	}

	return result, nil
}
