package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamConfigKey returns the cache key for an exam's candidate-facing
// config snapshot (title, duration, enabled blocks).
func (r *CacheKeyStruct) ExamConfigKey(examID int64) string {
	return fmt.Sprintf("exam:%d:config", examID)
}

// ExamOptionKeyKey returns the cache key for an exam's option lookup hash.
// Each field is an option ID; the value encodes the owning question and
// whether the option is the correct one.
func (r *CacheKeyStruct) ExamOptionKeyKey(examID int64) string {
	return fmt.Sprintf("exam:%d:option_key", examID)
}

// ExamMonitorChannel returns the Redis Pub/Sub channel for an exam's live
// session events.
func (r *CacheKeyStruct) ExamMonitorChannel(examID int64) string {
	return fmt.Sprintf("exam:%d:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
