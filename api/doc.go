// Package api provides the HTTP REST API for Carrot Trail.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session, body {"level_id": "conveyors"} (optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions on one level (?levelId= or ?sessionIds=a,b)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up","left"], "reset": false}
//   - POST /api/sessions/{id}/reset - Start the level over
//   - GET /api/sessions/{id}/history - Move history (?page=&limit=&order=)
//
// Levels:
//   - GET /api/levels - List the level catalogue
//   - GET /api/levels/{name} - Get a level document
//   - POST /api/levels - Save a level, body {"id": "mine", "level": {...}}
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket state stream for one session
//
// A move response carries a step record (from, to, event, landings) when the
// player moved, or attempted_to when the move was blocked. Bulk moves stop at
// the first blocked or invalid move, or when the game ends, and report why in
// stop_reason_code.
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "session not found",
//	  "code": 404
//	}
package api
