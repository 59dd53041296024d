package models

import (
	"sort"
	"sync"
	"time"
)

// Key policies for the result mapping
const (
	KeyByPath = "path" // Slash-separated path relative to the fixture root
	KeyByName = "name" // Base file name; same-named fixtures overwrite each other
)

// TestResult is the outcome recorded for one fixture run
type TestResult struct {
	Key        string        // Result mapping key
	File       FixtureFile   // Fixture that produced the result
	Output     string        // Trimmed stdout on exit 0, trimmed stderr otherwise
	ExitStatus int           // Exit status of the program under test
	Passed     bool          // ExitStatus == 0 and the run itself did not error
	Duration   time.Duration // Time taken by the invocation
}

// ResultSet maps result keys to fixture outcomes.
// Record is safe for concurrent use; iteration is always in sorted key order
// so that reports do not depend on directory walk order.
type ResultSet struct {
	mu         sync.Mutex
	results    map[string]TestResult
	collisions []string
}

// NewResultSet creates an empty ResultSet
func NewResultSet() *ResultSet {
	return &ResultSet{
		results: make(map[string]TestResult),
	}
}

// Record stores a result under its key. An existing entry with the same key
// is replaced and the key is remembered as a collision.
func (s *ResultSet) Record(result TestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[result.Key]; exists {
		s.collisions = append(s.collisions, result.Key)
	}
	s.results[result.Key] = result
}

// Get returns the result stored under key.
func (s *ResultSet) Get(key string) (TestResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[key]
	return r, ok
}

// Len returns the number of distinct keys.
func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Keys returns all keys in sorted order.
func (s *ResultSet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.results))
	for k := range s.results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Results returns all results ordered by key.
func (s *ResultSet) Results() []TestResult {
	keys := s.Keys()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TestResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.results[k])
	}
	return out
}

// Outputs returns the plain key -> output mapping.
func (s *ResultSet) Outputs() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.results))
	for k, r := range s.results {
		out[k] = r.Output
	}
	return out
}

// Collisions returns the keys that were recorded more than once, in the
// order the overwrites happened.
func (s *ResultSet) Collisions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.collisions))
	copy(out, s.collisions)
	return out
}

// Counts returns the number of passed and failed entries.
func (s *ResultSet) Counts() (passed, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// RunSummary is the aggregate outcome of one harness run
type RunSummary struct {
	ID          string        // Unique run identifier
	StartedAt   time.Time     // When the run began
	Duration    time.Duration // Total wall time, build included
	BuildSteps  int           // Number of build steps that ran
	BuildOK     bool          // Every build step exited 0 (true when the build was skipped)
	FixtureRoot string        // Fixture directory that was walked
	Executable  string        // Program under test
	Results     *ResultSet    // Per-fixture outcomes, nil when the build failed
	ScanErrors  []error       // Non-fatal traversal errors
}
