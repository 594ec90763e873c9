// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Difficulty is a question difficulty tier, ordered easy < medium < hard.
type Difficulty string

// Known difficulty tiers.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	default:
		return false
	}
}

// Rank returns the position of d in the tier order (easy=0), or -1 when unknown.
func (d Difficulty) Rank() int {
	for i, t := range Difficulties {
		if t == d {
			return i
		}
	}
	return -1
}

func (d Difficulty) String() string { return string(d) }

// ParseDifficulty accepts a tier name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}
