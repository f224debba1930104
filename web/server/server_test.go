package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// newTestServer serves the three-sphere layout plus a ground plane at y=-2.5
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	shapes, err := scene.Generate(scene.Spec{Kind: scene.KindThreeSpheres, Radius: 1, Extent: 1, GroundPlane: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	sc, err := scene.New("three", shapes, scene.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := NewServer(0, sc, nil, nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s: decoding response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func post(t *testing.T, ts *httptest.Server, path, body string, out interface{}) int {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("POST %s: decoding response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	var body map[string]string
	if code := get(t, ts, "/api/health", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected 200 ok, got %d %v", code, body)
	}
}

func TestNearest(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		hit      bool
		index    int
		geometry string
		distance float64
	}{
		{"default ray hits first sphere", "", true, 0, "sphere", 4},
		{"angled ray hits second sphere", "?dx=1&dy=0&dz=-1.5", true, 1, "sphere", -1},
		{"downward ray hits ground plane", "?dx=0&dy=-1&dz=0", true, 3, "plane", 2.5},
		{"upward ray misses", "?dx=0&dy=1&dz=0", false, -1, "", 0},
		{"offset origin", "?ox=-3&oy=0&oz=0", true, 2, "sphere", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp InspectResponse
			if code := get(t, ts, "/api/nearest"+tt.query, &resp); code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", code)
			}
			if resp.Hit != tt.hit || resp.Index != tt.index || resp.GeometryType != tt.geometry {
				t.Errorf("Expected (%t, %d, %q), got (%t, %d, %q)", tt.hit, tt.index, tt.geometry, resp.Hit, resp.Index, resp.GeometryType)
			}
			if tt.distance > 0 && math.Abs(resp.Distance-tt.distance) > 1e-9 {
				t.Errorf("Expected distance %f, got %f", tt.distance, resp.Distance)
			}
		})
	}
}

func TestNearest_BadParams(t *testing.T) {
	_, ts := newTestServer(t)

	for _, query := range []string{"?dx=abc", "?dx=0&dy=0&dz=0", "?ox=1e12"} {
		var body map[string]string
		if code := get(t, ts, "/api/nearest"+query, &body); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, code)
		}
		if body["error"] == "" {
			t.Errorf("%s: expected an error message", query)
		}
	}
}

func TestOccluded(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query    string
		occluded bool
	}{
		{"?tz=-10", true},
		{"?tz=-3", false},
		{"?ty=-10", true}, // ground plane
		{"?ty=10", false},
		{"", false}, // zero-length segment
	}
	for _, tt := range tests {
		var resp OccludedResponse
		if code := get(t, ts, "/api/occluded"+tt.query, &resp); code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.query, code)
		}
		if resp.Occluded != tt.occluded {
			t.Errorf("%s: expected occluded=%t, got %t", tt.query, tt.occluded, resp.Occluded)
		}
	}
}

func TestStats(t *testing.T) {
	_, ts := newTestServer(t)

	var resp StatsResponse
	if code := get(t, ts, "/api/stats", &resp); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if resp.Scene != "three" || resp.Shapes != 4 || resp.Unbounded != 1 || resp.Version != 1 {
		t.Errorf("Unexpected stats %+v", resp)
	}
	if resp.BVH == nil || resp.BVH.Primitives != 3 || resp.BVH.Nodes < 1 {
		t.Errorf("Expected hierarchy stats over 3 primitives, got %+v", resp.BVH)
	}
	if resp.Bounds == nil || resp.Bounds[0][0] > -4 || resp.Bounds[1][0] < 4 {
		t.Errorf("Expected bounds covering the spheres, got %v", resp.Bounds)
	}
}

func TestAddShapeAndRebuild(t *testing.T) {
	s, ts := newTestServer(t)

	var stats StatsResponse
	code := post(t, ts, "/api/shapes", `{"type":"sphere","center":[0,0,-2],"radius":0.5}`, &stats)
	if code != http.StatusCreated || stats.Shapes != 5 || stats.Version != 2 {
		t.Fatalf("Expected 201 with 5 shapes at version 2, got %d %+v", code, stats)
	}

	var hit InspectResponse
	get(t, ts, "/api/nearest", &hit)
	if hit.Index != 4 || math.Abs(hit.Distance-1.5) > 1e-9 || hit.Version != 2 {
		t.Errorf("Expected new sphere at distance 1.5, got %+v", hit)
	}

	if code := post(t, ts, "/api/rebuild", "", &stats); code != http.StatusOK || stats.Version != 3 {
		t.Errorf("Expected rebuild to version 3, got %d %+v", code, stats)
	}

	found := false
	for _, msg := range s.console.Messages() {
		if msg.Message == "snapshot published" && msg.Fields["version"] == uint64(3) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected console to record the rebuild, got %+v", s.console.Messages())
	}
}

func TestAddShape_Invalid(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{`{"type":"cone"}`, `{"type":"sphere","radius":-1}`, `not json`} {
		if code := post(t, ts, "/api/shapes", body, nil); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)
	if code := get(t, ts, "/api/rebuild", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", code)
	}
}

func TestScenes(t *testing.T) {
	_, ts := newTestServer(t)

	var body struct {
		Current string              `json:"current"`
		Scenes  []map[string]string `json:"scenes"`
	}
	get(t, ts, "/api/scenes", &body)
	if body.Current != "three" || len(body.Scenes) != len(scene.Kinds()) {
		t.Fatalf("Unexpected scene list %+v", body)
	}
	for _, s := range body.Scenes {
		if s["description"] == "" {
			t.Errorf("Scene %s has no description", s["kind"])
		}
	}
}

func TestTrace(t *testing.T) {
	_, ts := newTestServer(t)

	var resp TraceResponse
	if code := get(t, ts, "/api/trace?rays=500&seed=3&axis=true&lx=0&ly=20&lz=0", &resp); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if resp.Rays != 500 || resp.Hits == 0 || resp.ShadowRays != resp.Hits {
		t.Errorf("Unexpected trace response %+v", resp)
	}

	if code := get(t, ts, "/api/trace?rays=0", nil); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero rays, got %d", code)
	}
}

func TestTraceStream(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/trace/stream?rays=3000&workers=2")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event stream, got %q", ct)
	}
	text := string(body)
	if !strings.Contains(text, "event: progress") || !strings.Contains(text, "event: complete") {
		t.Errorf("Expected progress and complete events, got %q", text)
	}
	if !strings.Contains(text, `"done":3000`) {
		t.Errorf("Expected final progress to report all rays, got %q", text)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	get(t, ts, "/api/nearest", nil)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `bvh_queries_total{query="nearest",result="hit"} 1`) {
		t.Errorf("Expected nearest hit counter in exposition")
	}
}
