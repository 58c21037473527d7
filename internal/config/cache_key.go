package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session (JTI).
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:student:%d", studentID)
}

// DraftAnswersKey returns the cache key for a student's draft exam answers.
func (r *CacheKeyStruct) DraftAnswersKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:drafts", studentID, examID)
}

// ExamPaperKey returns the cache key for an exam's student-facing paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamAnswerKeyKey returns the cache key for an exam's multiple-choice answer key.
func (r *CacheKeyStruct) ExamAnswerKeyKey(examID string) string {
	return fmt.Sprintf("exam:%s:answer_key", examID)
}

// ExamMonitorChannel returns the Redis PubSub channel for live exam monitoring.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
