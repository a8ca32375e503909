package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatWXYZ(t *testing.T) {
	q := QuatWXYZ(1, 2, 3, 4)
	if q.W != 1 || q.X != 2 || q.Y != 3 || q.Z != 4 {
		t.Errorf("QuatWXYZ(1,2,3,4) = %+v", q)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if math.Abs(length-1.0) > 1e-12 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %+v", got)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	m := QuatIdentity().ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-identity[i]) > 1e-12 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)

	// Should have Y component and W = cos(45deg)
	if math.Abs(q.W-math.Cos(math.Pi/4)) > 1e-12 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", math.Cos(math.Pi/4), q.W)
	}
	if math.Abs(q.Y-math.Sin(math.Pi/4)) > 1e-12 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", math.Sin(math.Pi/4), q.Y)
	}
}

func TestQuatToEuler(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
		want Vec3
	}{
		{"identity", QuatIdentity(), Vec3{}},
		{"x 90", QuatFromAxisAngle(Vec3{X: 1}, math.Pi/2), Vec3{X: math.Pi / 2}},
		{"y -30", QuatFromAxisAngle(Vec3{Y: 1}, Radians(-30)), Vec3{Y: Radians(-30)}},
		{"z 120", QuatFromAxisAngle(Vec3{Z: 1}, Radians(120)), Vec3{Z: Radians(120)}},
		{"unnormalized x 90", Quat{X: 2, W: 2}, Vec3{X: math.Pi / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.ToEuler()
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("ToEuler() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuatFromEulerMatchesMatrix(t *testing.T) {
	e := Vec3{0.5, -0.25, 1.75}
	a := QuatFromEuler(e).ToMat4()
	b := RotateEuler(e)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("element %d: quaternion %f, euler %f", i, a[i], b[i])
		}
	}
}

func TestQuatFloat32(t *testing.T) {
	got := QuatWXYZ(1, 0.5, 0.25, 0.125).Float32()
	want := [4]float32{0.5, 0.25, 0.125, 1}
	if got != want {
		t.Errorf("Float32() = %v, want %v", got, want)
	}
}
