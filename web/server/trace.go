package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
	"github.com/df07/go-raytracer-bvh/pkg/tracer"
)

// TraceRequest holds the parameters of a batch trace
type TraceRequest struct {
	Rays        int
	Seed        int64
	Workers     int
	AxisAligned bool
	Light       *core.Vec3
}

// TraceResponse summarises a batch trace
type TraceResponse struct {
	Rays          int     `json:"rays"`
	Hits          int     `json:"hits"`
	ShadowRays    int     `json:"shadowRays"`
	Occluded      int     `json:"occluded"`
	HitRate       float64 `json:"hitRate"`
	RaysPerSecond float64 `json:"raysPerSecond"`
	ElapsedMs     int64   `json:"elapsedMs"`
	Version       uint64  `json:"version"`
}

// ProgressUpdate is sent after each completed batch of a streamed trace
type ProgressUpdate struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// parseTraceRequest parses request parameters
func parseTraceRequest(values url.Values) (*TraceRequest, error) {
	req := &TraceRequest{}

	var err error
	if req.Rays, err = parseIntParam(values, "rays", 10000, 1, 1000000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 1, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	if req.Workers, err = parseIntParam(values, "workers", 0, 0, 256); err != nil {
		return nil, err
	}
	if req.AxisAligned, err = parseBoolParam(values, "axis", false); err != nil {
		return nil, err
	}

	if values.Has("lx") || values.Has("ly") || values.Has("lz") {
		light, err := parseVec3Param(values, "l", core.Vec3{})
		if err != nil {
			return nil, err
		}
		req.Light = &light
	}

	return req, nil
}

// traceRegion returns the box ray origins are drawn from
func traceRegion(snap *scene.Snapshot) core.AABB {
	if bounds := snap.Bounds(); !bounds.IsEmpty() {
		return bounds
	}
	return core.NewAABB(core.Splat(-1), core.Splat(1))
}

// runTrace traces req against the current snapshot. progress may be nil.
func (s *Server) runTrace(r *http.Request, req *TraceRequest, progress func(done, total int)) (TraceResponse, error) {
	snap := s.scene.Snapshot()
	rays := tracer.GenerateRays(req.Rays, req.Seed, traceRegion(snap), req.AxisAligned)

	_, stats, err := tracer.Trace(r.Context(), s.metrics.Instrument(snap), rays, tracer.Options{
		Workers:  req.Workers,
		Light:    req.Light,
		Logger:   s.logger.Named("tracer"),
		Progress: progress,
	})
	if err != nil {
		return TraceResponse{}, errors.Wrap(err, "trace")
	}

	s.logger.Info("trace complete",
		zap.Int("rays", stats.Rays),
		zap.Int("hits", stats.Hits),
		zap.Float64("rays_per_second", stats.RaysPerSecond()),
		zap.Uint64("version", snap.Version()),
	)

	return TraceResponse{
		Rays:          stats.Rays,
		Hits:          stats.Hits,
		ShadowRays:    stats.ShadowRays,
		Occluded:      stats.Occluded,
		HitRate:       stats.HitRate(),
		RaysPerSecond: stats.RaysPerSecond(),
		ElapsedMs:     stats.Duration.Milliseconds(),
		Version:       snap.Version(),
	}, nil
}

// handleTrace runs a batch of random rays and returns the statistics
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	req, err := parseTraceRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := s.runTrace(r, req, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTraceStream runs a batch trace, reporting progress with SSE
func (s *Server) handleTraceStream(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	req, err := parseTraceRequest(r.URL.Query())
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Progress runs on this goroutine, so writes never interleave
	resp, err := s.runTrace(r, req, func(done, total int) {
		s.sendSSEJSON(w, "progress", ProgressUpdate{Done: done, Total: total})
	})
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Trace error: %v", err))
		return
	}
	s.sendSSEJSON(w, "complete", resp)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEJSON sends v as the data of an SSE event
func (s *Server) sendSSEJSON(w http.ResponseWriter, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, event, string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if flusher, ok := w.(http.Flusher); ok {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		return nil
	}
	return errors.New("streaming not supported")
}
