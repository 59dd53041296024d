package models

import (
	"errors"
	"strings"
	"time"
)

// Command is a single build step: run Executable with Args inside Dir.
// Dir replaces the "cd X && Y" chaining of shell-string steps; an empty Dir
// inherits the harness working directory.
type Command struct {
	// Name is a human-readable label used in logs
	Name string `yaml:"name"`
	// Dir is the working directory (empty = inherit)
	Dir string `yaml:"dir"`
	// Executable is the program to run, looked up on PATH
	Executable string `yaml:"command"`
	// Args are passed verbatim, no shell interpretation
	Args []string `yaml:"args,flow"`
}

// Validate checks if the command has all required fields
func (c *Command) Validate() error {
	if strings.TrimSpace(c.Executable) == "" {
		return errors.New("command executable is required")
	}
	return nil
}

// String renders the command as it would be typed in a shell, for logs and
// error messages only. It is never executed.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Executable)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts = append(parts, arg)
	}
	s := strings.Join(parts, " ")
	if c.Dir != "" {
		s = "cd " + c.Dir + " && " + s
	}
	return s
}

// Label returns Name when set, otherwise the rendered command line.
func (c Command) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.String()
}

// CommandResult holds the outcome of running one Command.
type CommandResult struct {
	ExitStatus int           // Process exit status, -1 if the process never exited normally
	Stdout     string        // Captured standard output
	Stderr     string        // Captured standard error
	Duration   time.Duration // Wall time of the invocation
}

// Succeeded reports whether the command exited with status 0.
func (r CommandResult) Succeeded() bool {
	return r.ExitStatus == 0
}
