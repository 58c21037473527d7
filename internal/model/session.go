package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates persisted exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// ExamSessionRow is the persisted record of a student's exam attempt. The live
// in-memory state machine lives in the examflow package; this row is its
// durable shadow.
type ExamSessionRow struct {
	ID             uuid.UUID     `json:"id"`
	ExamID         uuid.UUID     `json:"exam_id"`
	StudentID      int           `json:"student_id"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
	Status         SessionStatus `json:"status"`
	FinalScore     *float64      `json:"final_score,omitempty"`
	ViolationCount int           `json:"violation_count"`
}

// ExamResult is a session row joined with its student for the lecturer
// results table.
type ExamResult struct {
	ExamSessionRow
	StudentNIM  string `json:"student_nim"`
	StudentName string `json:"student_name"`
}

// ViolationKind tags client-observed integrity signals. These are advisory by
// construction: anything observed in the student's own browser can be forged
// or suppressed, so the kinds below must never be treated as proof of
// misconduct — only as counted warnings with an escalating consequence.
type ViolationKind string

const (
	ViolationRightClick        ViolationKind = "RIGHT_CLICK"
	ViolationShortcut          ViolationKind = "SHORTCUT"
	ViolationTabSwitch         ViolationKind = "TAB_SWITCH"
	ViolationFullscreenExit    ViolationKind = "FULLSCREEN_EXIT"
	ViolationDevToolsHeuristic ViolationKind = "DEVTOOLS_HEURISTIC"
)

// KnownViolationKind reports whether kind is one of the recognized signals.
func KnownViolationKind(kind ViolationKind) bool {
	switch kind {
	case ViolationRightClick, ViolationShortcut, ViolationTabSwitch,
		ViolationFullscreenExit, ViolationDevToolsHeuristic:
		return true
	}
	return false
}

// ViolationDescription returns the user-facing warning text for a kind.
func ViolationDescription(kind ViolationKind) string {
	switch kind {
	case ViolationRightClick:
		return "Klik kanan terdeteksi selama ujian."
	case ViolationShortcut:
		return "Kombinasi tombol terlarang terdeteksi."
	case ViolationTabSwitch:
		return "Anda meninggalkan tab ujian."
	case ViolationFullscreenExit:
		return "Anda keluar dari mode layar penuh."
	case ViolationDevToolsHeuristic:
		return "Indikasi developer tools terbuka terdeteksi."
	default:
		return "Aktivitas mencurigakan terdeteksi."
	}
}

// ViolationEvent is a persisted violation record (audit trail).
type ViolationEvent struct {
	ID         uuid.UUID     `json:"id"`
	ExamID     uuid.UUID     `json:"exam_id"`
	StudentID  int           `json:"student_id"`
	Kind       ViolationKind `json:"kind"`
	Detail     string        `json:"detail,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ReportViolationRequest is the payload for reporting a violation.
type ReportViolationRequest struct {
	Kind   ViolationKind `json:"kind" binding:"required"`
	Detail string        `json:"detail" binding:"omitempty,max=500"`
}
