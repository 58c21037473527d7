package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/middleware"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/service"
	ws "github.com/tuwir2002/maligo-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live exam session over a WebSocket: autosave,
// violation reports and submission without HTTP round-trip overhead.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID

	// The session must already be started over HTTP before streaming.
	if _, err := h.sessionService.State(examID, studentID); err != nil {
		ws.WriteError(conn, "no active session for this exam")
		return
	}

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, examID, studentID, &msg)
		case ws.ActionViolation:
			h.handleViolation(conn, examID, studentID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, examID, studentID)
		case ws.ActionState:
			h.handleState(conn, examID, studentID)
		case ws.ActionPing:
			ws.WriteEvent(conn, ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleAutosave(conn *websocket.Conn, examID uuid.UUID, studentID int, msg *ws.RequestPayload) {
	if msg.QID == "" || msg.Value == "" {
		ws.WriteError(conn, "q_id and value are required")
		return
	}

	questionID, err := uuid.Parse(msg.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	if err := h.sessionService.RecordAnswer(context.Background(), examID, studentID, questionID, msg.Value); err != nil {
		ws.WriteError(conn, "save failed")
		return
	}
	ws.WriteEvent(conn, ws.EventSaved, gin.H{"q_id": msg.QID})
}

func (h *WSHandler) handleViolation(conn *websocket.Conn, examID uuid.UUID, studentID int, msg *ws.RequestPayload) {
	kind := model.ViolationKind(msg.Kind)
	if !model.KnownViolationKind(kind) {
		ws.WriteError(conn, "unknown violation kind")
		return
	}

	warning, err := h.sessionService.ReportViolation(context.Background(), examID, studentID, kind, msg.Detail)
	if err != nil && warning == nil {
		ws.WriteError(conn, "violation report failed")
		return
	}
	if warning == nil {
		// Debounced duplicate, nothing to show.
		return
	}
	ws.WriteEvent(conn, ws.EventWarning, warning)
	if warning.ForcedSubmit {
		ws.WriteEvent(conn, ws.EventSubmitted, gin.H{"forced": true})
	}
}

func (h *WSHandler) handleSubmit(conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int) {
	if err := h.sessionService.Submit(context.Background(), examID, studentID); err != nil {
		wsLog.Warn().Err(err).Msg("Submit rejected")
		ws.WriteError(conn, err.Error())
		return
	}
	wsLog.Info().Msg("Exam submitted")
	ws.WriteEvent(conn, ws.EventSubmitted, gin.H{"forced": false})
}

func (h *WSHandler) handleState(conn *websocket.Conn, examID uuid.UUID, studentID int) {
	state, err := h.sessionService.State(examID, studentID)
	if err != nil {
		ws.WriteError(conn, "no active session")
		return
	}
	ws.WriteEvent(conn, ws.EventState, state)
}
