package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// CountdownStreamHandler serves live countdowns as server-sent events. Each
// connection owns one CountdownTicker, which is stopped when the client goes
// away or the requested number of events has been sent.
type CountdownStreamHandler struct {
	Service  *services.IPOService
	Interval time.Duration
	Now      Clock
}

func NewCountdownStreamHandler(service *services.IPOService) *CountdownStreamHandler {
	return &CountdownStreamHandler{
		Service:  service,
		Interval: services.DefaultCountdownInterval,
		Now:      time.Now,
	}
}

// Stream handles GET /ipos/countdowns/stream?ids=a,b&limit=n. Without ids it
// follows every IPO that is Open today. limit=0 streams until disconnect.
func (h *CountdownStreamHandler) Stream(c *fiber.Ctx) error {
	ids := splitIDs(c.Query("ids"))
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "limit must not be negative",
		})
	}

	subjects, err := h.Service.GetCountdownSubjects(c.UserContext(), ids, h.Now())
	if err != nil {
		return errorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	interval := h.Interval
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCountdowns(w, subjects, interval, limit)
	}))

	return nil
}

func streamCountdowns(w *bufio.Writer, subjects []services.CountdownSubject, interval time.Duration, limit int) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "CountdownStream",
		"subjects":  len(subjects),
	})

	if len(subjects) == 0 {
		writeEvent(w, "countdown", services.CountdownSnapshot{At: time.Now()})
		w.Flush()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := services.NewCountdownTicker(interval)
	defer ticker.Stop()
	ticker.SetSubjects(ctx, subjects)

	sent := 0
	for snapshot := range ticker.Updates() {
		if err := writeEvent(w, "countdown", snapshot); err != nil {
			logger.WithError(err).Debug("Countdown stream closed by client")
			return
		}
		if err := w.Flush(); err != nil {
			logger.WithError(err).Debug("Countdown stream closed by client")
			return
		}
		sent++
		if limit > 0 && sent >= limit {
			return
		}
	}
}

func writeEvent(w *bufio.Writer, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
