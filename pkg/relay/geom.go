package relay

import (
	"math"

	"github.com/cyrilix/robocar-carla-bridge/pkg/messages"
	"github.com/cyrilix/robocar-carla-bridge/pkg/simulator"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180.
}

// QuaternionFromEuler converts roll, pitch, yaw angles in radians to a
// quaternion in [x, y, z, w] order
func QuaternionFromEuler(roll, pitch, yaw float64) messages.Quaternion {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

	return messages.Quaternion{
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
		W: cr*cp*cy + sr*sp*sy,
	}
}

// transformMatrix builds the 4x4 homogeneous world matrix of a transform,
// rotation applied as Rz(yaw)·Ry(pitch)·Rx(roll)
func transformMatrix(t simulator.Transform) *mat.Dense {
	r := radians(t.Rotation.Roll)
	p := radians(t.Rotation.Pitch)
	y := radians(t.Rotation.Yaw)

	cr, sr := math.Cos(r), math.Sin(r)
	cp, sp := math.Cos(p), math.Sin(p)
	cy, sy := math.Cos(y), math.Sin(y)

	return mat.NewDense(4, 4, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr, t.Location.X,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr, t.Location.Y,
		-sp, cp * sr, cp * cr, t.Location.Z,
		0, 0, 0, 1,
	})
}

// wheelPositionInVehicleFrame maps a wheel position, given in the map frame
// in centimeters, into the vehicle frame in meters. The Y component is
// negated to switch handedness between the engine and the outbound schema.
func wheelPositionInVehicleFrame(world simulator.Transform, positionCm simulator.Vector3) messages.Vector3 {
	var inv mat.Dense
	if err := inv.Inverse(transformMatrix(world)); err != nil {
		zap.S().Errorf("unable to invert world transform %#v: %v", world, err)
		return messages.Vector3{}
	}

	posInMap := mat.NewVecDense(4, []float64{
		positionCm.X / 100.,
		positionCm.Y / 100.,
		positionCm.Z / 100.,
		1.,
	})
	var posInVehicle mat.VecDense
	posInVehicle.MulVec(&inv, posInMap)

	return messages.Vector3{
		X: posInVehicle.AtVec(0),
		Y: -posInVehicle.AtVec(1),
		Z: posInVehicle.AtVec(2),
	}
}
