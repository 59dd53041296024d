// Package fileutil walks fixture trees and rewrites fixture file extensions.
//
// ScanDirectory is the single traversal primitive. It never aborts on an
// unreadable entry: such problems are collected in ScanResult.Errors and the
// walk continues, so one bad subdirectory cannot hide the rest of the tree.
// Only a missing root or an invalid filter pattern is fatal.
//
// Results are sorted by absolute path, which keeps fixture order stable
// across platforms whose directory listings differ.
//
// Basic recursive scanning:
//
//	result, err := fileutil.ScanDirectory("closure", fileutil.ScanOptions{
//	    Recursive: true,
//	})
//
// Fixture discovery (every file, with paths relative to the root):
//
//	files, warnings, err := fileutil.DiscoverFixtures("closure", fileutil.ScanOptions{})
//
// Extension rewriting, e.g. moving fixtures from .lox to .nz:
//
//	res, err := fileutil.RewriteExtensions("closure", ".lox", ".nz", fileutil.RewriteOptions{})
package fileutil
