package relay

import (
	"math"
	"testing"

	"github.com/cyrilix/robocar-carla-bridge/pkg/messages"
	"github.com/cyrilix/robocar-carla-bridge/pkg/simulator"
)

func quaternionEquals(a, b messages.Quaternion, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance &&
		math.Abs(a.W-b.W) < tolerance
}

func vectorEquals(a, b messages.Vector3, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance
}

func TestQuaternionFromEuler_YawOnly(t *testing.T) {
	cases := []struct {
		name string
		yaw  float64
	}{
		{"no rotation", 0.},
		{"quarter turn", math.Pi / 2},
		{"half turn", math.Pi},
		{"negative yaw", -math.Pi / 3},
	}

	for _, c := range cases {
		q := QuaternionFromEuler(0., 0., c.yaw)
		want := messages.Quaternion{
			X: 0.,
			Y: 0.,
			Z: math.Sin(c.yaw / 2),
			W: math.Cos(c.yaw / 2),
		}
		if !quaternionEquals(q, want, 1e-9) {
			t.Errorf("[%v] bad quaternion: %#v, wants %#v", c.name, q, want)
		}
	}
}

func TestQuaternionFromEuler(t *testing.T) {
	cases := []struct {
		name             string
		roll, pitch, yaw float64
		want             messages.Quaternion
	}{
		{"roll only", math.Pi / 2, 0., 0.,
			messages.Quaternion{X: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}},
		{"pitch only", 0., math.Pi / 2, 0.,
			messages.Quaternion{Y: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}},
	}

	for _, c := range cases {
		q := QuaternionFromEuler(c.roll, c.pitch, c.yaw)
		if !quaternionEquals(q, c.want, 1e-9) {
			t.Errorf("[%v] bad quaternion: %#v, wants %#v", c.name, q, c.want)
		}
	}
}

func TestQuaternionFromEuler_UnitNorm(t *testing.T) {
	q := QuaternionFromEuler(0.1, -0.2, 2.5)
	norm := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if math.Abs(norm-1.) > 1e-9 {
		t.Errorf("quaternion norm %v, wants 1", norm)
	}
}

func TestWheelPositionInVehicleFrame(t *testing.T) {
	cases := []struct {
		name       string
		world      simulator.Transform
		positionCm simulator.Vector3
		want       messages.Vector3
	}{
		{"identity transform",
			simulator.Transform{},
			simulator.Vector3{X: 150., Y: 80., Z: 30.},
			messages.Vector3{X: 1.5, Y: -0.8, Z: 0.3}},
		{"translated vehicle",
			simulator.Transform{Location: simulator.Vector3{X: 1., Y: 2., Z: 3.}},
			simulator.Vector3{X: 300., Y: 400., Z: 500.},
			messages.Vector3{X: 2., Y: -2., Z: 2.}},
		{"vehicle facing +Y",
			simulator.Transform{Rotation: simulator.Rotation{Yaw: 90.}},
			simulator.Vector3{X: 0., Y: 100., Z: 0.},
			messages.Vector3{X: 1., Y: 0., Z: 0.}},
	}

	for _, c := range cases {
		pos := wheelPositionInVehicleFrame(c.world, c.positionCm)
		if !vectorEquals(pos, c.want, 1e-9) {
			t.Errorf("[%v] bad wheel position: %#v, wants %#v", c.name, pos, c.want)
		}
	}
}
