package evaluator

import (
	"fmt"
	"slices"
	"time"
)

const (
	StartWarning = "Using mock interview questions because the interview server is unavailable."

	startedMessage = "Interview started successfully."
	mockMessage    = "Mock interview started successfully. The Flask server is currently unavailable, so we're providing mock data."
)

var mockQuestions = []string{
	"Tell me about your experience with this technology?",
	"What are your strengths and weaknesses?",
	"Why do you want this job?",
	"Where do you see yourself in 5 years?",
	"Describe a challenging situation you faced and how you handled it.",
}

// MockQuestions returns a copy of the questions used when the interview
// service is unreachable.
func MockQuestions() []string {
	return slices.Clone(mockQuestions)
}

// MockStart is the start result served without the interview service.
func MockStart(now time.Time) StartResult {
	return StartResult{
		Success:     true,
		InterviewID: ID(fmt.Sprintf("mock-interview-%d", now.UnixMilli())),
		Questions:   MockQuestions(),
		Message:     mockMessage,
	}
}
