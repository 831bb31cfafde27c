package session

import "github.com/verte-zerg/mockexam/internal/model"

// SelectionFunc returns the chosen option for a question.
type SelectionFunc func(questionID string) (string, bool)

// Score applies the marking scheme: correct answers add MarksPerQuestion,
// wrong ones subtract NegativeMarking, unanswered ones add nothing. The
// total is floored at zero.
func Score(exam model.ExamDefinition, questions []model.Question, selected SelectionFunc) (float64, []model.AnswerRecord) {
	total := 0.0
	records := make([]model.AnswerRecord, 0, len(questions))
	for _, q := range questions {
		opt, answered := selected(q.ID)
		rec := model.AnswerRecord{
			QuestionID: q.ID,
			Selected:   opt,
			Answered:   answered,
			Correct:    answered && opt == q.CorrectOption,
		}
		switch {
		case !answered:
		case rec.Correct:
			total += exam.MarksPerQuestion
		default:
			total -= exam.NegativeMarking
		}
		records = append(records, rec)
	}
	if total < 0 {
		total = 0
	}
	return total, records
}

// ElapsedMinutes is the configured duration minus the whole minutes left.
func ElapsedMinutes(durationMinutes, secondsLeft int) int {
	if secondsLeft < 0 {
		secondsLeft = 0
	}
	elapsed := durationMinutes - secondsLeft/60
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func totalMarks(exam model.ExamDefinition, questionCount int) float64 {
	if exam.TotalQuestions > 0 {
		return exam.TotalMarks()
	}
	return float64(questionCount) * exam.MarksPerQuestion
}
