// Package service provides the business logic layer for Carrot Trail.
//
// GameService is the main service interface used by every transport (REST,
// WebSocket, MCP). SessionManager stores sessions, each owning its own
// engine.GameEngine. ConfigManager is the level catalogue.
//
// Usage:
//
//	levels, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService := service.NewGameService(session.NewManager(), levels)
//
//	info, err := gameService.CreateSession(ctx, "conveyors")
//	result, err := gameService.Move(ctx, info.ID, "up", false)
//
// Moves into walls are not errors: the result has Success false and an
// AttemptedTo describing the blocking cell. Unknown direction tokens return
// engine.ErrInvalidDirection and are not recorded in the history.
package service
