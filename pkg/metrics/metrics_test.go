package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// find returns the metric in family name whose labels include all of want
func find(t *testing.T, m *Metrics, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			return metric
		}
	}
	return nil
}

func threeSphereSnapshot(t *testing.T) *scene.Snapshot {
	t.Helper()
	shapes, err := scene.Generate(scene.Spec{Kind: scene.KindThreeSpheres, Radius: 1, Extent: 1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	s, err := scene.New("three", shapes, scene.Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s.Snapshot()
}

func TestInstrumented_CountsQueries(t *testing.T) {
	m := New()
	a := m.Instrument(threeSphereSnapshot(t))

	origin := core.NewVec3(0, 0, 0)
	a.NearestHit(core.NewRay(origin, core.NewVec3(0, 0, -1)))
	a.NearestHit(core.NewRay(origin, core.NewVec3(0, 0, -1)))
	a.NearestHit(core.NewRay(origin, core.NewVec3(0, 10, -5)))
	a.AnyHit(core.NewRay(origin, core.NewVec3(0, 0, -1)), 2)
	a.Occluded(origin, core.NewVec3(0, 0, -10))

	tests := []struct {
		query, result string
		want          float64
	}{
		{QueryNearest, ResultHit, 2},
		{QueryNearest, ResultMiss, 1},
		{QueryAny, ResultMiss, 1},
		{QueryOccluded, ResultHit, 1},
	}
	for _, tt := range tests {
		metric := find(t, m, "bvh_queries_total", map[string]string{"query": tt.query, "result": tt.result})
		if metric == nil {
			t.Errorf("%s/%s: metric not found", tt.query, tt.result)
			continue
		}
		if got := metric.GetCounter().GetValue(); got != tt.want {
			t.Errorf("%s/%s: expected %f, got %f", tt.query, tt.result, tt.want, got)
		}
	}

	latency := find(t, m, "bvh_query_duration_seconds", map[string]string{"query": QueryNearest})
	if latency == nil || latency.GetHistogram().GetSampleCount() != 3 {
		t.Errorf("Expected 3 nearest-hit latency samples, got %v", latency)
	}

	if a.Len() != 3 || a.Unwrap() == nil {
		t.Error("Expected wrapper to pass through Len and Unwrap")
	}
}

func TestObserveSnapshot(t *testing.T) {
	m := New()
	snap := threeSphereSnapshot(t)
	m.ObserveSnapshot(snap)

	if metric := find(t, m, "bvh_nodes", nil); metric == nil || metric.GetGauge().GetValue() != float64(snap.Stats().Nodes) {
		t.Errorf("Expected node gauge %d, got %v", snap.Stats().Nodes, metric)
	}
	if metric := find(t, m, "bvh_primitives", nil); metric == nil || metric.GetGauge().GetValue() != 3 {
		t.Errorf("Expected primitive gauge 3, got %v", metric)
	}
	if metric := find(t, m, "bvh_rebuilds_total", nil); metric == nil || metric.GetCounter().GetValue() != 1 {
		t.Errorf("Expected one rebuild, got %v", metric)
	}
	if metric := find(t, m, "bvh_build_duration_seconds", nil); metric == nil || metric.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("Expected one build sample, got %v", metric)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Instrument(threeSphereSnapshot(t)).NearestHit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{`bvh_queries_total{query="nearest",result="hit"} 1`, "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected exposition to contain %q", want)
		}
	}
}
