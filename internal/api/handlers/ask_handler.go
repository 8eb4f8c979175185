package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/isthissoup/internal/metrics"
	"github.com/yoockh/isthissoup/internal/models"
	"github.com/yoockh/isthissoup/internal/services"
	"github.com/yoockh/isthissoup/internal/utils"
)

const (
	ContentTypeText   = "text/plain; charset=utf-8"
	ContentTypeNDJSON = "application/x-ndjson"

	HeaderStreamID = "X-Stream-Id"
)

type AskHandler struct {
	svc services.VerdictService
	log *logrus.Logger
}

func NewAskHandler(svc services.VerdictService, l *logrus.Logger) *AskHandler {
	if l == nil {
		l = logrus.New()
	}
	return &AskHandler{svc: svc, log: l}
}

// Ask relays one verdict. The response is plain text unless the client
// accepts application/x-ndjson, in which case every chunk is framed and the
// stream ends with a done or error event.
func (h *AskHandler) Ask(c *gin.Context) {
	const op = "AskHandler.Ask"

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		err = utils.E(utils.CodeInternal, op, services.MsgAskFailed, err)
		h.log.WithError(err).Error("ask.decode_failed")
		metrics.AsksTotal.WithLabelValues(resultLabel(err)).Inc()
		writeError(c, err)
		return
	}

	// cancelled on return so the provider stops once nobody is reading
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	v, err := h.svc.Ask(ctx, req.Prompt)
	if err != nil {
		if !utils.IsCode(err, utils.CodeInvalidArgument) {
			h.log.WithError(err).Error("ask.failed")
		}
		metrics.AsksTotal.WithLabelValues(resultLabel(err)).Inc()
		writeError(c, err)
		return
	}

	c.Set("stream_id", v.StreamID)
	c.Header(HeaderStreamID, strconv.FormatInt(v.StreamID, 10))
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	metrics.StreamsInFlight.Inc()
	defer metrics.StreamsInFlight.Dec()

	var relayErr error
	if wantsNDJSON(c.GetHeader("Accept")) {
		relayErr = h.relayEvents(c.Writer, v)
	} else {
		relayErr = h.relayText(c.Writer, v)
	}

	entry := h.log.WithField("stream_id", v.StreamID)
	if relayErr != nil {
		entry.WithError(relayErr).Warn("ask.stream_interrupted")
		metrics.AsksTotal.WithLabelValues(metrics.ResultCut).Inc()
		return
	}
	metrics.AsksTotal.WithLabelValues(metrics.ResultOK).Inc()
}

func (h *AskHandler) relayText(w gin.ResponseWriter, v *services.Verdict) error {
	w.Header().Set("Content-Type", ContentTypeText)
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		chunk, ok := v.Next()
		if !ok {
			// plain text cannot signal truncation; the body just ends
			return v.Err()
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		w.Flush()
		metrics.ChunksRelayedTotal.Inc()
	}
}

func (h *AskHandler) relayEvents(w gin.ResponseWriter, v *services.Verdict) error {
	w.Header().Set("Content-Type", ContentTypeNDJSON)
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	emit := func(ev models.StreamEvent) error {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	var seq int64
	for {
		chunk, ok := v.Next()
		if !ok {
			break
		}
		seq++
		if err := emit(models.StreamEvent{Type: models.EventChunk, StreamID: v.StreamID, Seq: seq, Text: chunk}); err != nil {
			return err
		}
		metrics.ChunksRelayedTotal.Inc()
	}

	seq++
	if err := v.Err(); err != nil {
		_ = emit(models.StreamEvent{Type: models.EventError, StreamID: v.StreamID, Seq: seq, Error: services.MsgAskFailed})
		return err
	}
	return emit(models.StreamEvent{Type: models.EventDone, StreamID: v.StreamID, Seq: seq})
}

// resultLabel is the asks_total label for a request rejected before streaming.
func resultLabel(err error) string {
	switch {
	case utils.IsCode(err, utils.CodeInvalidArgument):
		return metrics.ResultInvalid
	case utils.IsCode(err, utils.CodeUpstream):
		return metrics.ResultUpstream
	default:
		return metrics.ResultInternal
	}
}

func wantsNDJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == ContentTypeNDJSON {
			return true
		}
	}
	return false
}
