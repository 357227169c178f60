// Package server exposes the newspaper workflow over HTTP. Runs are streamed
// to the client as Server-Sent Events and every step is checkpointed so the
// history of a run can be fetched later.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallnest/dailyagent/graph"
	"github.com/smallnest/dailyagent/log"
	"github.com/smallnest/dailyagent/newspaper"
	"github.com/smallnest/dailyagent/render"
	"github.com/smallnest/dailyagent/store"
)

// Options configures a Server.
type Options struct {
	Runnable *graph.StateRunnable[newspaper.State]
	Store    store.CheckpointStore

	// Callbacks are attached to every run, e.g. metrics.
	Callbacks []graph.CallbackHandler

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	RecursionLimit int
}

// Server is the HTTP API.
type Server struct {
	echo *echo.Echo
	opts Options
}

// New creates the server and registers its routes.
func New(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.RecursionLimit <= 0 {
		opts.RecursionLimit = newspaper.DefaultRecursionLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = errorHandler

	s := &Server{echo: e, opts: opts}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/newspapers", s.createNewspaper)
	api.GET("/runs/:id", s.getRun)
	api.GET("/graph", s.getGraph)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	log.Info("listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Error string `json:"error"`
}

func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	if code >= http.StatusInternalServerError {
		log.Error("%d %s %s: %v", code, req.Method, req.URL.Path, err)
	} else {
		log.Debug("%d %s %s: %v", code, req.Method, req.URL.Path, err)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, HTTPError{Error: msg})
	}
}

// NewspaperRequest is the body of POST /api/newspapers.
type NewspaperRequest struct {
	Request string `json:"request"`
	HTML    bool   `json:"html"`
}

// StepEvent is sent as a "step" event after every node.
type StepEvent struct {
	RunID           string `json:"run_id"`
	Step            int    `json:"step"`
	Node            string `json:"node"`
	Next            string `json:"next"`
	Detail          string `json:"detail"`
	CurrentTopic    string `json:"current_topic,omitempty"`
	TopicsRemaining int    `json:"topics_remaining"`
	Sections        int    `json:"sections"`
}

// DoneEvent is sent as the final "done" event of a successful run.
type DoneEvent struct {
	RunID     string   `json:"run_id"`
	Sections  []string `json:"sections"`
	Newspaper string   `json:"newspaper"`
	HTML      string   `json:"html,omitempty"`
}

// ErrorEvent is sent as the final "error" event of a failed run.
type ErrorEvent struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

func (s *Server) createNewspaper(c echo.Context) error {
	var body NewspaperRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	body.Request = strings.TrimSpace(body.Request)
	if body.Request == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request is required")
	}

	resp := c.Response()
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	callbacks := append([]graph.CallbackHandler{}, s.opts.Callbacks...)
	if s.opts.Store != nil {
		callbacks = append(callbacks, graph.NewCheckpointListener[newspaper.State](s.opts.Store).WithMetadata(newspaper.CheckpointMetadata))
	}
	cfg := &graph.Config{
		RecursionLimit: s.opts.RecursionLimit,
		Callbacks:      callbacks,
	}

	ctx := c.Request().Context()
	events := s.opts.Runnable.Stream(ctx, newspaper.NewRequest(body.Request), cfg)

	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	send := func(event string, payload any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	for ev := range events {
		var err error
		switch {
		case !ev.Done:
			log.Info("run %s step %d: %s", ev.RunID, ev.Step, ev.NodeName)
			err = send("step", StepEvent{
				RunID:           ev.RunID,
				Step:            ev.Step,
				Node:            ev.NodeName,
				Next:            ev.Next,
				Detail:          newspaper.Describe(ev.NodeName, ev.State),
				CurrentTopic:    ev.State.CurrentTopic,
				TopicsRemaining: len(ev.State.Topics),
				Sections:        len(ev.State.Digests),
			})
		case ev.Error != nil:
			log.Error("run %s failed: %v", ev.RunID, ev.Error)
			err = send("error", ErrorEvent{RunID: ev.RunID, Error: ev.Error.Error()})
		default:
			done := DoneEvent{
				RunID:     ev.RunID,
				Sections:  ev.State.Sections(),
				Newspaper: ev.State.FinalOutput,
			}
			if body.HTML {
				done.HTML = render.HTML(ev.State.FinalOutput)
			}
			err = send("done", done)
		}
		if err != nil {
			// client went away; the request context stops the run
			log.Warn("failed to write event: %v", err)
			return nil
		}
	}
	return nil
}

// CheckpointSummary describes one stored step of a run.
type CheckpointSummary struct {
	ID        string         `json:"id"`
	Node      string         `json:"node"`
	Version   int            `json:"version"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// RunResponse is the body of GET /api/runs/:id.
type RunResponse struct {
	RunID       string              `json:"run_id"`
	Checkpoints []CheckpointSummary `json:"checkpoints"`
	State       any                 `json:"state"`
}

func (s *Server) getRun(c echo.Context) error {
	if s.opts.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no checkpoint store configured")
	}
	runID := strings.TrimSpace(c.Param("id"))
	if runID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "run id required")
	}

	checkpoints, err := s.opts.Store.List(c.Request().Context(), runID)
	if err != nil {
		return err
	}
	if len(checkpoints) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("run %s not found", runID))
	}

	out := RunResponse{RunID: runID, Checkpoints: make([]CheckpointSummary, 0, len(checkpoints))}
	for _, cp := range checkpoints {
		out.Checkpoints = append(out.Checkpoints, CheckpointSummary{
			ID:        cp.ID,
			Node:      cp.NodeName,
			Version:   cp.Version,
			Metadata:  cp.Metadata,
			Timestamp: cp.Timestamp,
		})
	}
	out.State = checkpoints[len(checkpoints)-1].State
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getGraph(c echo.Context) error {
	exporter := graph.NewExporter(s.opts.Runnable.Graph())
	return c.String(http.StatusOK, exporter.DrawMermaid())
}
