// Package grading is the single home of the score arithmetic used by every
// dashboard: weighted course scores, course averages, completion rates and
// score distributions. The dashboards previously duplicated these formulas
// per view; they must only ever call this package.
//
// All functions are pure and never panic. Malformed or missing input degrades
// to zero values — a dashboard renders zeros and a warning, it never crashes.
package grading

import (
	"math"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// Weights is the category weighting policy for a course score.
type Weights struct {
	Exam float64
	Quiz float64
}

// DefaultWeights is the fixed 60/40 exam/quiz weighting. This is a hard
// business rule, not a tunable.
var DefaultWeights = Weights{Exam: 0.6, Quiz: 0.4}

// CourseRecords holds one student's recorded scores for one course.
// Ungraded answers (nil score) are already filtered out by CollectRecords.
type CourseRecords struct {
	CourseCode string
	ExamScores []float64
	QuizScores []float64
}

// CollectRecords folds a student's answer records for a course into score
// lists. Records with a nil score (essays awaiting grading) are skipped, as
// are records of unknown category. Never errors: a nil slice yields empty
// records.
func CollectRecords(courseCode string, answers []model.AnswerRecord) CourseRecords {
	rec := CourseRecords{CourseCode: courseCode}
	for _, a := range answers {
		if a.Score == nil {
			continue
		}
		switch a.Category {
		case model.AnswerCategoryExam:
			rec.ExamScores = append(rec.ExamScores, *a.Score)
		case model.AnswerCategoryQuiz:
			rec.QuizScores = append(rec.QuizScores, *a.Score)
		}
	}
	return rec
}

// StudentCourseScore computes a student's weighted score for one course,
// rounded to 2 decimal places. An empty category contributes 0. When both
// categories are empty the hardcoded fallback table is consulted (a
// data-quality workaround for courses whose scores never reached the system);
// with no fallback entry either, the score is 0.
func StudentCourseScore(rec CourseRecords, w Weights) float64 {
	if len(rec.ExamScores) == 0 && len(rec.QuizScores) == 0 {
		if fb, ok := fallbackScores[rec.CourseCode]; ok {
			return round2(fb)
		}
		return 0
	}
	score := mean(rec.ExamScores)*w.Exam + mean(rec.QuizScores)*w.Quiz
	return round2(score)
}

// CourseAverage returns the mean of the non-zero scores, or 0 if none.
//
// Zero scores are excluded because a 0 here almost always means "no data"
// rather than an earned zero — the upstream records cannot tell the two
// apart. A student who genuinely scored 0 is therefore invisible to the
// average. Inherited policy, kept verbatim; see DESIGN.md.
func CourseAverage(scores []float64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s == 0 {
			continue
		}
		sum += s
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

// CompletionRate returns completed/total as a percentage, clamped to 100.
// A zero total yields 0 rather than a division by zero.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	if rate > 100 {
		return 100
	}
	return round2(rate)
}

// Distribution buckets scores into high (>80), medium (60..80) and low (<60),
// each expressed as a percentage of the score count.
type Distribution struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

// ScoreDistribution computes the high/medium/low split of a score list.
// All buckets are 0 for an empty list.
func ScoreDistribution(scores []float64) Distribution {
	if len(scores) == 0 {
		return Distribution{}
	}
	var high, medium, low int
	for _, s := range scores {
		switch {
		case s > 80:
			high++
		case s >= 60:
			medium++
		default:
			low++
		}
	}
	total := float64(len(scores))
	return Distribution{
		High:   round2(float64(high) / total * 100),
		Medium: round2(float64(medium) / total * 100),
		Low:    round2(float64(low) / total * 100),
	}
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
