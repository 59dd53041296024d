package models

// FixtureFile is a file discovered under the fixture root.
type FixtureFile struct {
	Path    string // Path handed to the program under test (root joined with RelPath)
	RelPath string // Slash-separated path relative to the fixture root
	Name    string // Base name
	Ext     string // Extension including the leading dot, empty if none
}

// RenameRecord describes one extension rewrite, planned or performed.
type RenameRecord struct {
	OldPath string
	NewPath string
	Applied bool // false for dry-run plans
}
