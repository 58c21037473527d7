package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrLecturerAccessOnly ErrCode = "LECTURER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrNotEligible      ErrCode = "NOT_ELIGIBLE"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrOutsideWindow    ErrCode = "OUTSIDE_EXAM_WINDOW"
	ErrSessionNotActive ErrCode = "SESSION_NOT_ACTIVE"
	ErrSubmitGateClosed ErrCode = "SUBMIT_GATE_CLOSED"
	ErrSubmissionFailed ErrCode = "SUBMISSION_FAILED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"

	// ─── Skripsi ───────────────────────────────────────────────────────
	ErrSkripsiTransition ErrCode = "SKRIPSI_INVALID_TRANSITION"
	ErrSkripsiExists     ErrCode = "SKRIPSI_ALREADY_EXISTS"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "NIM/NIDN atau kata sandi salah."
	case ErrSessionActive:
		return "Anda sudah login di perangkat lain."
	case ErrSessionInvalidated:
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrStudentAccessOnly:
		return "Sumber daya ini terbatas untuk mahasiswa."
	case ErrLecturerAccessOnly:
		return "Sumber daya ini terbatas untuk dosen."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrActionForbidden:
		return "Tindakan ini tidak diperbolehkan."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrNotEligible:
		return "Anda tidak memenuhi syarat untuk mengikuti ujian ini."
	case ErrAlreadySubmitted:
		return "Ujian ini sudah pernah Anda kumpulkan dan tidak dapat diulang."
	case ErrOutsideWindow:
		return "Ujian ini berada di luar jendela waktu pengerjaan."
	case ErrSessionNotActive:
		return "Tidak ada sesi ujian aktif untuk permintaan ini."
	case ErrSubmitGateClosed:
		return "Jawab semua pertanyaan terlebih dahulu, atau tunggu hingga sisa waktu kurang dari 5 menit."
	case ErrSubmissionFailed:
		return "Pengumpulan jawaban gagal. Jawaban Anda tersimpan, silakan coba lagi."
	case ErrNoQuestions:
		return "Ujian ini tidak memiliki pertanyaan."

	// ─── Skripsi ───────────────────────────────────────────────────────
	case ErrSkripsiTransition:
		return "Perubahan status skripsi ini tidak diperbolehkan."
	case ErrSkripsiExists:
		return "Anda sudah memiliki pengajuan skripsi."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Unggah file diperlukan."
	case ErrUnsupportedFile:
		return "Jenis file tidak didukung."
	case ErrFileTooLarge:
		return "Ukuran file melebihi batas."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
