package service

import (
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/util"
	"strconv"
)

// ValidateAnswerKey 答案键必须恰好 50 个且每项为 A/B/C/D
func ValidateAnswerKey(answers []string) error {
	if len(answers) != model.ExamQuestionCount {
		return util.NewValidationError("Exactly %d answers are required", model.ExamQuestionCount)
	}
	for i, a := range answers {
		if !isChoice(a) {
			return util.NewValidationError("Invalid answer for question %d. Must be A, B, C, or D", i+1)
		}
	}
	return nil
}

func isChoice(a string) bool {
	for _, c := range model.AnswerChoices {
		if a == c {
			return true
		}
	}
	return false
}

// ScoreAnswers 第 i 题（1 起）提交值为字符串且与 key[i-1] 相同得 1 分；
// 缺失、非字符串或超出答案键长度的题目不得分
func ScoreAnswers(key []string, submitted map[string]interface{}) int {
	score := 0
	for i := 0; i < model.ExamQuestionCount; i++ {
		if i >= len(key) {
			break
		}
		v, ok := submitted[strconv.Itoa(i+1)].(string)
		if !ok || v == "" {
			continue
		}
		if v == key[i] {
			score++
		}
	}
	return score
}
