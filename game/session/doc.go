// Package session keeps the running games of a Carrot Trail server.
//
// Each session owns one engine.GameEngine, and through it one grid and one
// actor. Sessions are kept in memory only; restarting the server discards
// them.
//
// Session ids are 4 hex characters generated from crypto/rand and looked up
// case-insensitively. Idle sessions can be expired with
// CleanupExpiredSessions or the RunCleanup loop.
//
// Usage:
//
//	manager := session.NewManager()
//	go manager.RunCleanup(ctx, time.Minute, time.Hour)
//
//	sess, err := manager.Create("", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess, err = manager.Get(sess.ID)
package session
