package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

func TestStudentCourseScoreWeighted(t *testing.T) {
	rec := CourseRecords{
		ExamScores: []float64{54, 80},
		QuizScores: []float64{79},
	}
	// exam mean 67, quiz mean 79 → 67*0.6 + 79*0.4 = 71.80
	require.InDelta(t, 71.80, StudentCourseScore(rec, DefaultWeights), 0.001)
}

func TestStudentCourseScoreEmptyCategory(t *testing.T) {
	rec := CourseRecords{ExamScores: []float64{90}}
	require.InDelta(t, 54.0, StudentCourseScore(rec, DefaultWeights), 0.001)

	rec = CourseRecords{QuizScores: []float64{90}}
	require.InDelta(t, 36.0, StudentCourseScore(rec, DefaultWeights), 0.001)
}

func TestStudentCourseScoreFallback(t *testing.T) {
	rec := CourseRecords{CourseCode: "MKU-101"}
	require.InDelta(t, 75.0, StudentCourseScore(rec, DefaultWeights), 0.001)

	// No records and no fallback entry → 0.
	rec = CourseRecords{CourseCode: "XXX-999"}
	require.Zero(t, StudentCourseScore(rec, DefaultWeights))
}

func TestStudentCourseScoreBounds(t *testing.T) {
	cases := []CourseRecords{
		{ExamScores: []float64{0, 0}, QuizScores: []float64{0}},
		{ExamScores: []float64{100, 100}, QuizScores: []float64{100}},
		{ExamScores: []float64{33.33}, QuizScores: []float64{66.67}},
	}
	for _, rec := range cases {
		score := StudentCourseScore(rec, DefaultWeights)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 100.0)
	}
}

func TestCollectRecordsSkipsUngraded(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	answers := []model.AnswerRecord{
		{Category: model.AnswerCategoryExam, Score: score(80)},
		{Category: model.AnswerCategoryExam, Score: nil}, // essay awaiting grading
		{Category: model.AnswerCategoryQuiz, Score: score(70)},
		{Category: "UNKNOWN", Score: score(99)},
	}
	rec := CollectRecords("TIF-101", answers)
	require.Equal(t, []float64{80}, rec.ExamScores)
	require.Equal(t, []float64{70}, rec.QuizScores)
}

func TestCollectRecordsNilInput(t *testing.T) {
	rec := CollectRecords("TIF-101", nil)
	require.Empty(t, rec.ExamScores)
	require.Empty(t, rec.QuizScores)
}

func TestCourseAverageEmpty(t *testing.T) {
	require.Zero(t, CourseAverage(nil))
	require.Zero(t, CourseAverage([]float64{}))
}

// Documents the inherited zero-exclusion policy: an earned 0 and "no data"
// are indistinguishable, so zeros never count toward the denominator.
func TestCourseAverageIgnoresZeros(t *testing.T) {
	require.InDelta(t, 80.0, CourseAverage([]float64{0, 80, 0}), 0.001)
	require.Zero(t, CourseAverage([]float64{0, 0}))
}

func TestCompletionRate(t *testing.T) {
	require.Zero(t, CompletionRate(0, 0))
	require.InDelta(t, 100.0, CompletionRate(2, 2), 0.001)
	require.InDelta(t, 100.0, CompletionRate(3, 2), 0.001) // clamped
	require.InDelta(t, 50.0, CompletionRate(1, 2), 0.001)
	require.InDelta(t, 33.33, CompletionRate(1, 3), 0.001)
}

func TestScoreDistribution(t *testing.T) {
	require.Equal(t, Distribution{}, ScoreDistribution(nil))

	dist := ScoreDistribution([]float64{95, 80, 60, 59})
	require.InDelta(t, 25.0, dist.High, 0.001)   // 95
	require.InDelta(t, 50.0, dist.Medium, 0.001) // 80 and 60 inclusive
	require.InDelta(t, 25.0, dist.Low, 0.001)    // 59
}

func TestScoreDistributionBoundaries(t *testing.T) {
	// 80 is medium (not high), 60 is medium (not low).
	dist := ScoreDistribution([]float64{80, 60})
	require.Zero(t, dist.High)
	require.InDelta(t, 100.0, dist.Medium, 0.001)
	require.Zero(t, dist.Low)
}
