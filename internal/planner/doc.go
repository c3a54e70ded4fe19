// Package planner decides where each font file goes and builds a
// PlacementPlan that the pipeline executes.
//
// Implemented:
//   - PlacementPlan (types.go)
//   - ResolveIdentity: metadata → naming.Identity via the foundry resolver
//     and the weight normalizer (identity.go)
//   - Planner.Plan: identity → target → duplicate check and claim (planner.go)
//   - Planner.Preview and Planner.Aside: the analyze table, and the
//     duplicates folder used in move mode (planner.go)
package planner
