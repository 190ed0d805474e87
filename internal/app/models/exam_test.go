package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueDatePassed(t *testing.T) {
	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	exam := &Exam{DueDate: due}

	// The whole due-date day counts as on time
	assert.False(t, exam.DueDatePassed(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)))
	assert.False(t, exam.DueDatePassed(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.False(t, exam.DueDatePassed(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)))
	assert.True(t, exam.DueDatePassed(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestAggregateStatus(t *testing.T) {
	set := &AnswerSet{Answers: []Answer{
		{Status: AnswerApproved},
		{Status: AnswerApproved},
	}}
	assert.Equal(t, AnswerApproved, set.AggregateStatus())

	set.Answers[1].Status = AnswerRework
	assert.Equal(t, AnswerRework, set.AggregateStatus())
}
