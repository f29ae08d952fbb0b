package service

import (
	"context"
	"errors"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttemptService(db *gorm.DB) *ExamAttemptService {
	return NewExamAttemptService(
		repository.NewExamRepository(db),
		repository.NewExamAttemptRepository(db),
		NewLocalAttemptLocker(),
	)
}

func TestStartAttempt_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	first, created, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.AttemptInProgress, first.Status)
	assert.Equal(t, 50, first.TotalQuestions)
	assert.Equal(t, 50, first.TotalMarks)
	assert.Zero(t, first.Score)

	second, created, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&model.ExamAttempt{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartAttempt_ConcurrentCreatesOne(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	const workers = 8
	ids := make([]uint, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
			if assert.NoError(t, err) {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var count int64
	db.Model(&model.ExamAttempt{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartAttempt_Errors(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	inactive := createExam(t, db, "inactive", uniformKey("A"), false)

	_, _, err := svc.StartAttempt(context.Background(), user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrExamNotFound)

	_, _, err = svc.StartAttempt(context.Background(), user.ID, inactive.ID)
	assert.ErrorIs(t, err, util.ErrExamNotActive)
}

func TestStartAttempt_NewAttemptAfterCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	first, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(user.ID, first.ID, uniformAnswers("A"))
	require.NoError(t, err)

	second, created, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitAttempt_Scoring(t *testing.T) {
	tests := []struct {
		name    string
		key     []string
		answers map[string]interface{}
		score   int
		percent float64
	}{
		{name: "all correct", key: uniformKey("A"), answers: uniformAnswers("A"), score: 50, percent: 100.0},
		{name: "half correct", key: append(uniformKey("A")[:25], uniformKey("B")[:25]...), answers: uniformAnswers("A"), score: 25, percent: 50.0},
		{name: "one correct", key: uniformKey("A"), answers: map[string]interface{}{"3": "A"}, score: 1, percent: 2.0},
		{name: "nothing answered", key: uniformKey("A"), answers: map[string]interface{}{}, score: 0, percent: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := newAttemptService(db)
			user := createUser(t, db, "student", false)
			exam := createExam(t, db, "exam", tc.key, true)

			attempt, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
			require.NoError(t, err)

			result, err := svc.SubmitAttempt(user.ID, attempt.ID, tc.answers)
			require.NoError(t, err)
			assert.Equal(t, tc.score, result.Score)
			assert.Equal(t, 50, result.TotalMarks)
			assert.Equal(t, 50, result.TotalQuestions)
			assert.Equal(t, tc.percent, result.ScorePercentage)
			assert.Equal(t, attempt.ID, result.AttemptID)

			stored, err := repository.NewExamAttemptRepository(db).FindByID(attempt.ID)
			require.NoError(t, err)
			assert.Equal(t, model.AttemptCompleted, stored.Status)
			assert.NotNil(t, stored.CompletedAt)
			assert.Equal(t, tc.score, stored.Score)
			assert.LessOrEqual(t, stored.Score, stored.TotalMarks)
			assert.Len(t, stored.UserAnswers, len(tc.answers))
		})
	}
}

func TestSubmitAttempt_Errors(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	owner := createUser(t, db, "owner", false)
	stranger := createUser(t, db, "stranger", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)
	noKey := createExam(t, db, "no key", nil, true)

	attempt, _, err := svc.StartAttempt(context.Background(), owner.ID, exam.ID)
	require.NoError(t, err)

	t.Run("missing attempt", func(t *testing.T) {
		_, err := svc.SubmitAttempt(owner.ID, 9999, uniformAnswers("A"))
		assert.ErrorIs(t, err, util.ErrAttemptNotFound)
	})

	t.Run("other user's attempt", func(t *testing.T) {
		_, err := svc.SubmitAttempt(stranger.ID, attempt.ID, uniformAnswers("A"))
		assert.ErrorIs(t, err, util.ErrAttemptNotFound)
	})

	t.Run("answers required", func(t *testing.T) {
		_, err := svc.SubmitAttempt(owner.ID, attempt.ID, nil)
		assert.ErrorIs(t, err, util.ErrAnswersRequired)
	})

	t.Run("exam without answer key", func(t *testing.T) {
		a, _, err := svc.StartAttempt(context.Background(), owner.ID, noKey.ID)
		require.NoError(t, err)
		_, err = svc.SubmitAttempt(owner.ID, a.ID, uniformAnswers("A"))
		assert.ErrorIs(t, err, util.ErrExamNoAnswerKey)
	})

	t.Run("already completed", func(t *testing.T) {
		_, err := svc.SubmitAttempt(owner.ID, attempt.ID, uniformAnswers("A"))
		require.NoError(t, err)

		_, err = svc.SubmitAttempt(owner.ID, attempt.ID, uniformAnswers("B"))
		assert.ErrorIs(t, err, util.ErrAttemptCompleted)

		stored, err := repository.NewExamAttemptRepository(db).FindByID(attempt.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, stored.Score, "score must not change after completion")
	})
}

func TestSubmitAttempt_ConcurrentOnlyOneWins(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	attempt, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)

	const workers = 6
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitAttempt(user.ID, attempt.ID, uniformAnswers("A"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, util.ErrAttemptCompleted)
	}
	assert.Equal(t, 1, succeeded)
}

func TestGradeExam(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("C"), true)
	inactive := createExam(t, db, "inactive", uniformKey("C"), false)
	noKey := createExam(t, db, "no key", nil, true)

	result, err := svc.GradeExam(user.ID, exam.ID, uniformAnswers("C"))
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 100.0, result.ScorePercentage)

	stored, err := repository.NewExamAttemptRepository(db).FindByID(result.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	_, err = svc.GradeExam(user.ID, 9999, uniformAnswers("C"))
	assert.ErrorIs(t, err, util.ErrExamNotFound)

	_, err = svc.GradeExam(user.ID, inactive.ID, uniformAnswers("C"))
	assert.ErrorIs(t, err, util.ErrExamNotActive)

	_, err = svc.GradeExam(user.ID, exam.ID, nil)
	assert.ErrorIs(t, err, util.ErrAnswersRequired)

	_, err = svc.GradeExam(user.ID, noKey.ID, uniformAnswers("C"))
	assert.ErrorIs(t, err, util.ErrExamNoAnswerKey)
}

func TestListAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	other := createUser(t, db, "other", false)
	exam := createExam(t, db, "History Exam", uniformKey("A"), true)

	first, err := svc.GradeExam(user.ID, exam.ID, uniformAnswers("B"))
	require.NoError(t, err)
	second, err := svc.GradeExam(user.ID, exam.ID, uniformAnswers("A"))
	require.NoError(t, err)
	_, err = svc.GradeExam(other.ID, exam.ID, uniformAnswers("A"))
	require.NoError(t, err)

	views, err := svc.ListAttempts(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.AttemptID, views[0].ID)
	assert.Equal(t, first.AttemptID, views[1].ID)
	require.NotNil(t, views[0].ExamTitle)
	assert.Equal(t, "History Exam", *views[0].ExamTitle)
	assert.Equal(t, 100.0, views[0].ScorePercentage)
	assert.Equal(t, 0.0, views[1].ScorePercentage)
	require.NotNil(t, views[0].DurationMinutes)
}

func TestGetAttemptDetail(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	stranger := createUser(t, db, "stranger", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	attempt, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)

	detail, err := svc.GetAttemptDetail(user.ID, attempt.ID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 50)
	assert.Nil(t, detail.Questions[0].CorrectAnswer, "key stays hidden while in progress")
	assert.Nil(t, detail.Exam.Answers)

	_, err = svc.SubmitAttempt(user.ID, attempt.ID, map[string]interface{}{"1": "A", "2": "B"})
	require.NoError(t, err)

	detail, err = svc.GetAttemptDetail(user.ID, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, detail.Attempt.Status)
	assert.Equal(t, 1, detail.Attempt.Score)

	q1, q2, q3 := detail.Questions[0], detail.Questions[1], detail.Questions[2]
	assert.Equal(t, "A", q1.UserAnswer)
	require.NotNil(t, q1.IsCorrect)
	assert.True(t, *q1.IsCorrect)
	assert.Equal(t, "B", q2.UserAnswer)
	assert.False(t, *q2.IsCorrect)
	assert.Nil(t, q3.UserAnswer)
	require.NotNil(t, q3.CorrectAnswer)
	assert.Equal(t, "A", *q3.CorrectAnswer)

	_, err = svc.GetAttemptDetail(stranger.ID, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestDurationAndPercentage(t *testing.T) {
	db := newTestDB(t)
	svc := newAttemptService(db)
	user := createUser(t, db, "student", false)
	exam := createExam(t, db, "exam", uniformKey("A"), true)

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	attempt, _, err := svc.StartAttempt(context.Background(), user.ID, exam.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(12*time.Minute + 30*time.Second) }
	answers := map[string]interface{}{}
	for i := 1; i <= 17; i++ {
		answers[strconv.Itoa(i)] = "A"
	}
	result, err := svc.SubmitAttempt(user.ID, attempt.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 17, result.Score)
	assert.Equal(t, 34.0, result.ScorePercentage)

	views, err := svc.ListAttempts(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].DurationMinutes)
	assert.Equal(t, 12.5, *views[0].DurationMinutes)
}

func TestLocalAttemptLocker_PropagatesError(t *testing.T) {
	locker := NewLocalAttemptLocker()
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = locker.WithLock(ctx, "k", func() error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLocalAttemptLocker_Serializes(t *testing.T) {
	locker := NewLocalAttemptLocker()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locker.WithLock(context.Background(), "same", func() error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.locks, "released keys are dropped")
}
