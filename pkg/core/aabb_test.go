package core

import (
	"math"
	"testing"
)

func missed(tEnter, tExit float64) bool {
	return tEnter > tExit || tExit < 0
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(-1, 0.5, 2), NewVec3(0.5, 3, 4))

	u := a.Union(b)
	expected := NewAABB(NewVec3(-1, 0, 0), NewVec3(1, 3, 4))
	if u != expected {
		t.Errorf("Expected %v, got %v", expected, u)
	}

	if got := EmptyAABB().Union(a); got != a {
		t.Errorf("Expected empty box to be the union identity, got %v", got)
	}
}

func TestAABB_Intersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name       string
		origin     Vec3
		direction  Vec3
		shouldHit  bool
		expectedT0 float64
		expectedT1 float64
	}{
		{
			name:       "Head on along +Z",
			origin:     NewVec3(0, 0, -5),
			direction:  NewVec3(0, 0, 1),
			shouldHit:  true,
			expectedT0: 4,
			expectedT1: 6,
		},
		{
			name:       "Head on along -X",
			origin:     NewVec3(5, 0, 0),
			direction:  NewVec3(-1, 0, 0),
			shouldHit:  true,
			expectedT0: 4,
			expectedT1: 6,
		},
		{
			name:       "Origin inside",
			origin:     NewVec3(0, 0, 0),
			direction:  NewVec3(0, 1, 0),
			shouldHit:  true,
			expectedT0: -1,
			expectedT1: 1,
		},
		{
			name:      "Box behind ray",
			origin:    NewVec3(0, 0, 5),
			direction: NewVec3(0, 0, 1),
			shouldHit: false,
		},
		{
			name:      "Parallel ray outside slab",
			origin:    NewVec3(0, 2, -5),
			direction: NewVec3(0, 0, 1),
			shouldHit: false,
		},
		{
			name:       "Parallel ray on slab plane",
			origin:     NewVec3(0, 1, -5),
			direction:  NewVec3(0, 0, 1),
			shouldHit:  true,
			expectedT0: 4,
			expectedT1: 6,
		},
		{
			name:       "Parallel ray with negative zero component",
			origin:     NewVec3(0.5, 0, -5),
			direction:  NewVec3(math.Copysign(0, -1), 0, 1),
			shouldHit:  true,
			expectedT0: 4,
			expectedT1: 6,
		},
		{
			name:       "Diagonal",
			origin:     NewVec3(-3, -3, 0),
			direction:  NewVec3(1, 1, 0),
			shouldHit:  true,
			expectedT0: 2,
			expectedT1: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t0, t1 := box.Intersect(tt.origin, tt.direction.Inverse())

			if math.IsNaN(t0) || math.IsNaN(t1) {
				t.Fatalf("Expected no NaN, got tEnter=%f tExit=%f", t0, t1)
			}
			if missed(t0, t1) == tt.shouldHit {
				t.Fatalf("Expected hit=%t, got tEnter=%f tExit=%f", tt.shouldHit, t0, t1)
			}
			if !tt.shouldHit {
				return
			}
			if math.Abs(t0-tt.expectedT0) > 1e-9 || math.Abs(t1-tt.expectedT1) > 1e-9 {
				t.Errorf("Expected [%f, %f], got [%f, %f]", tt.expectedT0, tt.expectedT1, t0, t1)
			}
		})
	}
}

func TestAABB_IntersectEmptyBoxMisses(t *testing.T) {
	directions := []Vec3{
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 1, 1),
		NewVec3(-1, 0.5, -0.25),
	}
	for _, d := range directions {
		t0, t1 := EmptyAABB().Intersect(NewVec3(0, 0, 0), d.Inverse())
		if !missed(t0, t1) {
			t.Errorf("Expected empty box to be missed by direction %v, got [%f, %f]", d, t0, t1)
		}
	}
}

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0))

	if !box.Hit(ray, 0, 10) {
		t.Error("Expected hit within [0, 10]")
	}
	if box.Hit(ray, 0, 0.5) {
		t.Error("Expected miss when tMax stops short of the box")
	}
	if box.Hit(ray, 2.5, 10) {
		t.Error("Expected miss when tMin starts past the box")
	}
}

func TestAABB_Helpers(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(4, 2, 1))

	if axis := box.LongestAxis(); axis != 0 {
		t.Errorf("Expected longest axis 0, got %d", axis)
	}
	if area := box.SurfaceArea(); math.Abs(area-28) > 1e-12 {
		t.Errorf("Expected surface area 28, got %f", area)
	}
	if !box.Expand(0.1).Contains(box) {
		t.Error("Expected expanded box to contain the original")
	}
	if box.Contains(box.Expand(0.1)) {
		t.Error("Expected original box not to contain the expanded one")
	}
	if !EmptyAABB().IsEmpty() || EmptyAABB().IsFinite() {
		t.Error("Expected empty box to be empty and not finite")
	}
	if !box.IsFinite() {
		t.Error("Expected regular box to be finite")
	}
	if got := NewAABBFromPoints(NewVec3(1, 5, 2), NewVec3(-1, 0, 3)); got != NewAABB(NewVec3(-1, 0, 2), NewVec3(1, 5, 3)) {
		t.Errorf("Unexpected box from points: %v", got)
	}
}
