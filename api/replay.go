package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/monitoring"
	"github.com/kilianp07/standwait/core/replay"
)

const (
	writeWait = 10 * time.Second

	msgStarting = "replay_starting"
	msgComplete = "replay_complete"
	msgNoData   = "no_data"
	msgInvalid  = "invalid_request"
	msgError    = "error"
)

type statusMessage struct {
	Type          string  `json:"type"`
	Message       string  `json:"message"`
	SessionID     string  `json:"session_id,omitempty"`
	Date          string  `json:"date"`
	BucketMinutes int     `json:"bucket_minutes"`
	Speed         float64 `json:"speed"`
	TotalBuckets  int     `json:"total_buckets"`
	Error         string  `json:"error,omitempty"`
}

type snapshotMessage struct {
	Type     string         `json:"type"`
	Seq      int            `json:"seq"`
	Snapshot model.Snapshot `json:"snapshot"`
}

type replayParams struct {
	date  time.Time
	width time.Duration
	speed float64
}

func (h *Handler) replayParams(c *gin.Context) (replayParams, error) {
	cfg := h.planner.Config()
	p := replayParams{width: cfg.Width(), speed: cfg.Speed}
	raw := c.Query("date")
	if raw == "" {
		return p, invalid("date is required (YYYY-MM-DD)")
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return p, invalid("date must be YYYY-MM-DD")
	}
	p.date = d
	if v := c.Query("bucket_minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > cfg.MaxBucketMinutes {
			return p, invalid("bucket_minutes must be between 1 and " + strconv.Itoa(cfg.MaxBucketMinutes))
		}
		p.width = time.Duration(n) * time.Minute
	}
	if v := c.Query("speed"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || s <= 0 {
			return p, invalid("speed must be a positive number")
		}
		p.speed = s
	}
	return p, nil
}

// Replay streams the snapshots of a historical day over a websocket.
func (h *Handler) Replay(c *gin.Context) {
	params, err := h.replayParams(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go readPump(conn, cancel)

	status := statusMessage{
		Type:          "status",
		Date:          params.date.Format("2006-01-02"),
		BucketMinutes: int(params.width.Minutes()),
		Speed:         params.speed,
	}

	session, err := h.planner.Load(ctx, h.store, params.date, params.width)
	if err != nil {
		h.closeWithError(conn, status, err)
		return
	}
	status.SessionID = session.ID()
	status.TotalBuckets = session.Total()
	status.Message = msgStarting
	if err := writeJSON(conn, status); err != nil {
		return
	}

	streamer := replay.Streamer{
		Interval:  h.planner.Config().Step(params.width, params.speed),
		Date:      status.Date,
		Publisher: h.publisher,
		Logger:    h.log,
	}
	err = streamer.Run(ctx, session, func(_ context.Context, seq int, snap model.Snapshot) error {
		return writeJSON(conn, snapshotMessage{Type: "snapshot", Seq: seq, Snapshot: snap})
	})
	if err != nil {
		// Client went away or the write failed; nothing left to tell it.
		h.log.Debugw("replay ended early", map[string]any{"session_id": session.ID(), "error": err.Error()})
		return
	}
	status.Message = msgComplete
	if err := writeJSON(conn, status); err != nil {
		return
	}
	closeConn(conn, websocket.CloseNormalClosure, msgComplete)
}

// closeWithError sends a final status describing err and closes the socket
// with 1008 for client errors and 1011 for server errors.
func (h *Handler) closeWithError(conn *websocket.Conn, status statusMessage, err error) {
	code := websocket.CloseInternalServerErr
	switch {
	case errors.Is(err, model.ErrNoData):
		status.Message = msgNoData
		code = websocket.ClosePolicyViolation
	case errors.Is(err, model.ErrInvalidRequest):
		status.Message = msgInvalid
		code = websocket.ClosePolicyViolation
	default:
		status.Message = msgError
		h.log.Errorf("replay %s: %v", status.Date, err)
		tags := monitoring.ReplayTags("api", status.SessionID, status.Date)
		tags[monitoring.TagPath] = "/ws/replay"
		monitoring.CaptureException(err, tags)
	}
	status.Error = err.Error()
	if writeJSON(conn, status) != nil {
		return
	}
	closeConn(conn, code, status.Message)
}

func writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func closeConn(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}

// readPump drains client frames and cancels the stream once the client
// disconnects.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
