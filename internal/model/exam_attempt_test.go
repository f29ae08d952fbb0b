package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 50))
	assert.Equal(t, 100.0, Percentage(50, 50))
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 34.0, Percentage(17, 50))
	assert.Equal(t, 0.0, Percentage(10, 0))
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &ExamAttempt{StartedAt: start}
	assert.Nil(t, a.DurationMinutes())

	done := start.Add(12*time.Minute + 30*time.Second)
	a.CompletedAt = &done
	d := a.DurationMinutes()
	require.NotNil(t, d)
	assert.Equal(t, 12.5, *d)
}

func TestExamHasAnswerKey(t *testing.T) {
	assert.False(t, (&Exam{}).HasAnswerKey())
	assert.True(t, (&Exam{Answers: []string{"A"}}).HasAnswerKey())
}
