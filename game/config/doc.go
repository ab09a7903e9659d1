// Package config provides the level catalogue for Carrot Trail.
//
// Levels are stored as JSON or YAML files in a levels directory. The file
// stem is the level id used when creating sessions:
//
//	levels/first.json     -> "first"
//	levels/conveyors.yaml -> "conveyors"
//
// Each file is a engine.LevelConfig: name, description, a layout of cell
// codes (1..17), optional rules and optional messages. Files are validated
// on load and cached until RefreshCache is called.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("conveyors")
//	levels, err := manager.ListConfigs()
//
// When the directory holds no valid level the built-in
// engine.DefaultLevelConfig is the default.
package config
