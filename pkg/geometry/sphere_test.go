package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

func TestSphere_Intersect(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1)

	tests := []struct {
		name           string
		ray            core.Ray
		shouldHit      bool
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{
			name:           "Ray hits sphere center",
			ray:            core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
			shouldHit:      true,
			expectedT:      4,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:      "Ray misses sphere",
			ray:       core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, 0, -1)),
			shouldHit: false,
		},
		{
			name:      "Sphere behind ray",
			ray:       core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:           "Ray starts inside sphere",
			ray:            core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(1, 0, 0)),
			shouldHit:      true,
			expectedT:      1,
			expectedNormal: core.NewVec3(-1, 0, 0),
		},
		{
			name:           "Unnormalized direction",
			ray:            core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -2)),
			shouldHit:      true,
			expectedT:      2,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "Ray starts on surface going in",
			ray:            core.NewRay(core.NewVec3(0, 0, -4), core.NewVec3(0, 0, -1)),
			shouldHit:      true,
			expectedT:      2,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:      "Ray starts on surface going out",
			ray:       core.NewRay(core.NewVec3(0, 0, -4), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := sphere.Intersect(tt.ray)

			if hit.Hit != tt.shouldHit {
				t.Fatalf("Expected hit=%t, got hit=%t (t=%f)", tt.shouldHit, hit.Hit, hit.T)
			}
			if !tt.shouldHit {
				if !math.IsInf(hit.T, 1) {
					t.Errorf("Expected T=+Inf on miss, got %f", hit.T)
				}
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if !hit.Normal.Equals(tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if !hit.Point.Equals(tt.ray.At(hit.T), 1e-12) {
				t.Errorf("Expected point on ray at t, got %v", hit.Point)
			}
		})
	}
}

func TestSphere_BoundingBox(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 0.5)
	box := sphere.BoundingBox()

	expected := core.NewAABB(core.NewVec3(0.5, 1.5, 2.5), core.NewVec3(1.5, 2.5, 3.5))
	if box != expected {
		t.Errorf("Expected %v, got %v", expected, box)
	}
}
