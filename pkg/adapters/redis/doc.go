// Package redis publishes traversal snapshots to Redis so that renderers in
// other processes can follow a session. Nothing is read back into the engine.
package redis
