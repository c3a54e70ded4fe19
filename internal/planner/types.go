package planner

import (
	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/naming"
)

// PlacementPlan holds the complete placement decision for a single font
// file. It is produced by [Planner.Plan] and consumed once by the pipeline,
// which executes it and records the outcome.
type PlacementPlan struct {
	SourcePath string
	TargetPath string // equals SourcePath for skips
	Action     naming.Action
	Suffix     int    // n for naming.ActionRenameSuffix
	Reason     string // human-readable note for skips

	// Duplicate is set when identical content already occupies the target.
	Duplicate   bool
	DuplicateOf string

	// Inputs the decision was derived from, kept for logging and the journal.
	Metadata      *fontmeta.FontMetadata
	Identity      naming.Identity
	FoundrySource foundry.Source
	Target        naming.Target
	Hash          uint64
}

// Moves reports whether executing the plan relocates the file.
func (p *PlacementPlan) Moves() bool {
	return p.Action == naming.ActionMove || p.Action == naming.ActionRenameSuffix
}
