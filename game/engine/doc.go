// Package engine provides the grid simulation for Carrot Trail.
//
// The engine package implements:
//   - the closed set of cell kinds, their solidity and their transitions
//   - the Grid, built from a table of level codes
//   - the Actor and its movement lock
//   - the Resolver, which turns one directional input into a new actor
//     position, a mutated grid and an event
//   - level loading (JSON or YAML) and validation
//
// Core Types:
//
// CellKind is a tagged enum; IsSolid and Next are its only behavior. Grid
// owns cell state, Actor owns its coordinate and status, and the Resolver
// owns neither: callers pass both on every move. GameEngine is the loop
// driver used by sessions; it keeps the Grid and Actor for one traversal.
//
// Usage:
//
//	level, err := engine.LoadLevelConfig("levels/first.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Grass and fences block movement, and so does the edge of the grid.
// Stepping on an armed trap springs it; stepping on a sprung trap loses the
// game. Conveyors push the player one more cell, chaining into whatever lies
// there. Turnstiles rotate each time they are crossed and, when the level
// enables it, deflect the player through one of their arms. Carrots are
// eaten once. Reaching an End cell wins.
package engine
