// Package websocket pushes Carrot Trail session updates to browsers.
//
// A single Hub goroutine owns every connection. Clients attach to one
// session with /ws?session=<id> and receive JSON messages:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "move", "data": {...}}
//
// Incoming client frames are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(sessionID, state)
//
// Clients whose send buffer fills up are disconnected rather than allowed
// to stall the hub.
package websocket
