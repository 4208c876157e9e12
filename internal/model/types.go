// Package model defines shared data structures.
package model

import "time"

// TopN is the number of ranked rows written to each report.
const TopN = 10

// Config defines a single report run.
type Config struct {
	InputDir      string
	InputName     string
	OutputDir     string
	OccupationOut string
	StateOut      string
	Verbose       bool
	Record        bool
	DBPath        string
}

// Tally holds certified-case counts collected from one input file.
type Tally struct {
	Occupations map[string]int
	States      map[string]int
	Total       int
}

// NewTally returns an empty tally with initialized maps.
func NewTally() Tally {
	return Tally{
		Occupations: map[string]int{},
		States:      map[string]int{},
	}
}

// Count is a single ranked key and its number of certified cases.
type Count struct {
	Key   string
	Count int
}

// Ranking kinds stored with run entries.
const (
	KindOccupation = "occupation"
	KindState      = "state"
)

// Run summarizes a recorded report run.
type Run struct {
	ID            string
	CreatedAt     time.Time
	InputPath     string
	OccupationOut string
	StateOut      string
	Total         int
}

// RunEntry is one ranked row stored for a run.
type RunEntry struct {
	Kind  string
	Rank  int
	Key   string
	Count int
}
