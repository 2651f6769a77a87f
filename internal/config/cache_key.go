package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key registering a student's login JTI.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// ClosureGuardKey returns the SETNX key the lifecycle watcher uses to avoid
// enqueueing the same closure from multiple processes. Advisory only; the
// closure operation itself is idempotent.
func (r *CacheKeyStruct) ClosureGuardKey(sessionID string) string {
	return fmt.Sprintf("session:%s:closure_guard", sessionID)
}

// RosterChannel returns the Redis PubSub channel carrying live roster events
// (marks and closure) for a session.
func (r *CacheKeyStruct) RosterChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:roster", sessionID)
}

var CacheKey = NewCacheKeyStruct()
