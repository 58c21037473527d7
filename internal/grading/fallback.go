package grading

// fallbackScores substitutes a fixed score for courses whose answer records
// never made it into the system (legacy semesters imported without scores).
// This is an explicit data-quality workaround, not a computed value; entries
// are removed as the missing records get backfilled.
var fallbackScores = map[string]float64{
	"MKU-101": 75,
	"MKU-102": 78,
	"TIF-201": 70,
	"TIF-305": 72,
}
