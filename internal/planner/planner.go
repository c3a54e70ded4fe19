package planner

import (
	"fmt"
	"path/filepath"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/naming"
)

// Planner turns extracted metadata into placement plans for one run. It
// holds the run-wide duplicate resolver, so one Planner must serve every
// file of a run and a new one is needed per run.
type Planner struct {
	resolver  *foundry.Resolver
	formatter naming.Formatter
	dups      *naming.DuplicateResolver
	outputDir string

	// Duplicates moved aside get their own claims under asideDir.
	aside    *naming.DuplicateResolver
	asideDir string
}

// New builds a planner from cfg. User foundry rules are compiled ahead of
// the built-in table; hash inspects files already occupying a target.
func New(cfg *config.Config, outputDir string, hash naming.HashFunc) (*Planner, error) {
	rules, err := foundry.CompileRules(cfg.FoundryRules)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}
	return &Planner{
		resolver:  foundry.NewResolver(rules...),
		formatter: naming.Formatter{Scheme: cfg.Scheme, GroupByFoundry: cfg.GroupByFoundry},
		dups:      naming.NewDuplicateResolver(hash),
		outputDir: abs,
		aside:     naming.NewDuplicateResolver(hash),
		asideDir:  filepath.Join(abs, cfg.DuplicatesDir),
	}, nil
}

// Resolver exposes the foundry resolver, for the analyze table.
func (p *Planner) Resolver() *foundry.Resolver { return p.resolver }

// Preview resolves the identity and target of md without claiming
// anything. Used by the analyze table.
func (p *Planner) Preview(md *fontmeta.FontMetadata) (naming.Identity, foundry.Result, naming.Target) {
	id, res := ResolveIdentity(md, p.resolver)
	return id, res, p.formatter.Format(id, filepath.Ext(md.SourcePath))
}

// Plan produces a PlacementPlan for a file whose content hashes to hash.
// This is the central decision path the pipeline calls for every file.
//
// Flow:
//  1. Resolve identity (family, subfamily, weight, foundry, italic)
//  2. Format the target under the run's scheme
//  3. Check and claim the target against the run and the disk
func (p *Planner) Plan(md *fontmeta.FontMetadata, hash uint64) (*PlacementPlan, error) {
	// --- 1. Identity ---
	id, res := ResolveIdentity(md, p.resolver)

	// --- 2. Target ---
	target := p.formatter.Format(id, filepath.Ext(md.SourcePath))

	// --- 3. Duplicate check and claim ---
	d, err := p.dups.Resolve(naming.Request{
		Source: md.SourcePath,
		Hash:   hash,
		Root:   p.outputDir,
		Target: target,
	})
	if err != nil {
		return nil, err
	}

	plan := &PlacementPlan{
		SourcePath:    md.SourcePath,
		TargetPath:    d.Path,
		Action:        d.Action,
		Suffix:        d.Suffix,
		Duplicate:     d.Duplicate,
		DuplicateOf:   d.DuplicateOf,
		Metadata:      md,
		Identity:      id,
		FoundrySource: res.Source,
		Target:        target,
		Hash:          hash,
	}
	switch {
	case d.Duplicate:
		plan.Reason = fmt.Sprintf("duplicate of %s", d.DuplicateOf)
	case d.Action == naming.ActionSkip:
		plan.Reason = "already organized"
	}
	return plan, nil
}

// Release gives up the target claimed by plan after its move failed.
func (p *Planner) Release(plan *PlacementPlan) {
	if plan.Moves() {
		p.dups.Release(plan.TargetPath, plan.SourcePath)
	}
}

// Aside plans the relocation of a duplicate into the duplicates folder,
// mirroring its target layout there. The returned decision is a Move or
// RenameSuffix, or a Skip when identical content is already set aside.
func (p *Planner) Aside(plan *PlacementPlan) (naming.Decision, error) {
	return p.aside.Resolve(naming.Request{
		Source: plan.SourcePath,
		Hash:   plan.Hash,
		Root:   p.asideDir,
		Target: plan.Target,
	})
}

// ReleaseAside gives up a duplicates-folder claim after its move failed.
func (p *Planner) ReleaseAside(d naming.Decision, source string) {
	p.aside.Release(d.Path, source)
}
