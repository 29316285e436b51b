package service

import "gram-vidya/internal/models"

// Grade is the outcome of one submission.
type Grade struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
	Passed         bool    `json:"passed"`
}

// GradeQuiz scores answers (question index -> chosen option index) against the quiz.
// Unanswered questions and indices outside the quiz never score. The percentage is
// not rounded.
func GradeQuiz(quiz *models.Quiz, answers map[int]int) Grade {
	total := len(quiz.Questions)
	g := Grade{TotalQuestions: total}
	// An empty quiz has no percentage to compare, so it never passes.
	if total == 0 {
		return g
	}

	for i := range quiz.Questions {
		chosen, ok := answers[i]
		if !ok {
			continue
		}
		if correct := quiz.CorrectOptionAt(i); correct >= 0 && chosen == correct {
			g.Score++
		}
	}

	g.Percentage = float64(g.Score) / float64(total) * 100
	g.Passed = g.Percentage >= quiz.PassingMarks
	return g
}
