// Package mcp exposes Carrot Trail to AI agents over the Model Context
// Protocol.
//
// Client is a thin MCP server whose tools proxy to the REST API, so agents
// and browsers share the same sessions:
//   - create_session, get_session, list_sessions
//   - game_state, move, bulk_move, reset_game, move_history
//   - list_levels, describe_cell, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
