// Package domain holds errors shared between the services and the adapters.
package domain

import "errors"

var (
	// ErrPlayerNotFound is returned when the remote store has no record for the name.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrNoActiveGenerators means no question type is enabled; fatal to starting a session.
	ErrNoActiveGenerators = errors.New("no active question generators")
	// ErrNoQuestionAvailable means every enabled generator declined for this page.
	ErrNoQuestionAvailable = errors.New("no generator could produce a question")
	// ErrSessionFinished is returned on any transition attempted after settlement.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrQuestionNotLive is returned when an answer does not match the outstanding question.
	ErrQuestionNotLive = errors.New("question is not live")
	// ErrSessionNotSettleable is returned when settlement runs before the last outcome is recorded.
	ErrSessionNotSettleable = errors.New("session has unanswered questions")
)
