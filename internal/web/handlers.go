package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/models"
)

func (s *Server) handleTransactions(c *gin.Context) {
	count := s.opts.BatchSize
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
			return
		}
		if n > s.opts.MaxBatchSize {
			n = s.opts.MaxBatchSize
		}
		count = n
	}

	var opts generator.Options
	if raw := c.Query("fraud"); raw != "" {
		forced, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fraud must be true or false"})
			return
		}
		opts.ClassOverride = &forced
	}

	txs, err := s.gen.Batch(c.Request.Context(), s.rngs.New(), count, opts)
	if err != nil && !errors.Is(err, models.ErrClassifierUnavailable) {
		s.logger.Warn().Err(err).Int("generated", len(txs)).Msg("Batch interrupted")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "batch interrupted"})
		return
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("Serving unscored batch")
	}

	events := make([]models.TransactionEvent, len(txs))
	for i, tx := range txs {
		events[i] = models.NewEvent(tx)
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) handleStream(c *gin.Context) {
	sub := s.hub.Subscribe()
	defer sub.Close()

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	var heartbeat <-chan time.Time
	if s.opts.Heartbeat > 0 {
		ticker := time.NewTicker(s.opts.Heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	ctx := c.Request.Context()
	s.logger.Debug().Str("client_ip", c.ClientIP()).Msg("Stream client connected")
	defer s.logger.Debug().Str("client_ip", c.ClientIP()).Msg("Stream client disconnected")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error().Err(err).Str("id", ev.ID).Msg("Error encoding event")
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
				return
			}
			c.Writer.Flush()
		case <-heartbeat:
			if _, err := fmt.Fprint(c.Writer, ": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": s.gen.Scorer().Available(),
		"subscribers":  s.hub.Subscribers(),
		"timestamp":    s.now().UnixMilli(),
	})
}

func (s *Server) handleRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions": s.gen.Catalog().Regions(),
	})
}
