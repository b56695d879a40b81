package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/middleware"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
	ws "github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/websocket"
)

const (
	wsReadLimit   = 4096
	wsEventBuffer = 16
	wsOutBuffer   = 32
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler streams a learner's exam session over WebSocket.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/learner/exams/:exam_id/stream?token=
// Starts the session if needed, then pushes tick and state events until the
// session ends or the client leaves. Leaving does not stop the countdown.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	examID, ok := parseExamID(c)
	if !ok {
		return
	}
	learnerID, err := claims.LearnerID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	// Resolve the session before upgrading so failures use the HTTP envelope.
	ctrl, err := h.sessions.Get(learnerID, examID)
	if errors.Is(err, service.ErrSessionNotFound) {
		ctrl, err = h.sessions.Start(c.Request.Context(), claims, examID)
	}
	if err != nil && ctrl == nil {
		status, code := errorCode(err)
		response.Fail(c, status, code)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("learner_id", learnerID.String()).
		Int64("exam_id", examID).
		Logger()
	wsLog.Info().Msg("Learner connected")

	events, unsubscribe := ctrl.Subscribe(wsEventBuffer)
	defer unsubscribe()

	out := make(chan any, wsOutBuffer)
	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go h.writeLoop(conn, wsLog, events, out, stop, writerDone)

	send := func(v any) {
		select {
		case out <- v:
		case <-writerDone:
		}
	}
	send(ws.StateResponse{Event: ws.EventState, View: ctrl.View()})

	// Session commands carry the socket's claims but outlive the socket.
	cmdCtx := context.WithoutCancel(service.ContextWithClaims(c.Request.Context(), claims))

	ws.PrepareRead(conn, wsReadLimit)
	for {
		var req ws.Request
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		if resp := h.dispatch(cmdCtx, ctrl, req); resp != nil {
			send(resp)
		}
	}

	close(stop)
	<-writerDone
}

// dispatch runs one client command and returns the direct reply, if any.
// State changes reach the client through the event subscription.
func (h *WSHandler) dispatch(ctx context.Context, ctrl *session.Controller, req ws.Request) any {
	switch req.Action {
	case ws.ActionAnswer:
		if req.QuestionID <= 0 || req.OptionID <= 0 {
			return wsError(response.ErrInvalidPayload)
		}
		if err := ctrl.Answer(req.QuestionID, req.OptionID); err != nil {
			_, code := errorCode(err)
			return wsError(code)
		}
		return ws.AnsweredResponse{Event: ws.EventAnswered, QuestionID: req.QuestionID, OptionID: req.OptionID}
	case ws.ActionFinish:
		if err := ctrl.Finish(ctx); err != nil {
			_, code := errorCode(err)
			return wsError(code)
		}
		return nil
	case ws.ActionRetry:
		if err := ctrl.Retry(ctx); err != nil {
			_, code := errorCode(err)
			return wsError(code)
		}
		return nil
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}
	default:
		return wsError(response.ErrInvalidPayload)
	}
}

// writeLoop is the connection's only writer. It ends when stop closes, a
// write fails, or the session's event stream closes.
func (h *WSHandler) writeLoop(
	conn *websocket.Conn,
	log zerolog.Logger,
	events <-chan session.Event,
	out <-chan any,
	stop <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)

	ping := time.NewTicker(ws.PingPeriod)
	defer ping.Stop()

	for {
		var msg any
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				// Session closed; let the client finish reading, then hang up.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			wire, ok := ws.FromSessionEvent(ev)
			if !ok {
				continue
			}
			msg = wire
		case msg = <-out:
		case <-ping.C:
			if err := ws.WritePing(conn); err != nil {
				log.Debug().Err(err).Msg("Ping failed")
				return
			}
			continue
		}

		if err := ws.WriteTyped(conn, msg); err != nil {
			log.Debug().Err(err).Msg("Write failed")
			return
		}
	}
}

func wsError(code response.ErrCode) ws.ErrorResponse {
	return ws.ErrorResponse{Event: ws.EventError, Code: string(code), Error: response.GetMessage(code)}
}
