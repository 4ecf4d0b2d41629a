package relay

import (
	"fmt"
	"math"
	"time"

	"github.com/cyrilix/robocar-carla-bridge/pkg/messages"
	"github.com/cyrilix/robocar-carla-bridge/pkg/simulator"
	"github.com/cyrilix/robocar-protobuf/go/events"
	"github.com/golang/protobuf/ptypes/timestamp"
	"go.uber.org/zap"
)

// Vehicle is the handle on the simulated ego vehicle, owned by the simulator
// client and borrowed by the relay
type Vehicle interface {
	Id() string
	TypeId() string
	RoleName() string
	Velocity() simulator.Vector3
	Acceleration() simulator.Vector3
	Transform() simulator.Transform
	Control() simulator.ControlCommand
	Physics() simulator.PhysicsControl
	ApplyControl(cmd *simulator.ControlCommand)
	SetAutopilot(enabled bool)
	NotifyFrame() <-chan simulator.FrameEvent
}

type Publisher interface {
	PublishStatus(msg *messages.VehicleStatus)
	PublishPose(msg *messages.PoseStamped)
	PublishCanbus(msg *messages.Canbus)
	PublishVehicleInfo(msg *messages.VehicleInfo)
	PublishSteering(msg *events.SteeringMessage)
	PublishThrottle(msg *events.ThrottleMessage)
}

func New(vehicle Vehicle, publisher Publisher, onControlApplied func(id string)) *Relay {
	return &Relay{
		vehicle:          vehicle,
		publisher:        publisher,
		onControlApplied: onControlApplied,
		logr:             zap.S().With("part", "relay"),
	}
}

/* Relay republishes the ego vehicle state on each simulation frame and
forwards inbound control, override and autopilot commands to the engine.

Inbound handlers are expected to be invoked from a single delivery thread,
the override and published flags are not locked. */
type Relay struct {
	vehicle          Vehicle
	publisher        Publisher
	onControlApplied func(id string)

	overrideEnabled bool
	infoPublished   bool

	cancel chan interface{}

	logr *zap.SugaredLogger
}

func (r *Relay) Start() error {
	r.logr.Info("run ego vehicle relay")
	r.cancel = make(chan interface{})
	frameChan := r.vehicle.NotifyFrame()

	for {
		select {
		case evt := <-frameChan:
			r.SendVehicleMsgs(evt.Frame, evt.Time)
		case <-r.cancel:
			return nil
		}
	}
}

func (r *Relay) Stop() {
	r.logr.Info("close ego vehicle relay")
	close(r.cancel)
}

// SendVehicleMsgs publishes the status, pose and canbus messages for one
// simulation frame, plus the vehicle info on the first call
func (r *Relay) SendVehicleMsgs(frame uint64, stamp float64) {
	header := messages.Header{Frame: frame, Stamp: stamp, FrameId: "map"}

	transform := r.vehicle.Transform()
	orientation := QuaternionFromEuler(
		radians(transform.Rotation.Roll),
		radians(transform.Rotation.Pitch),
		radians(transform.Rotation.Yaw),
	)
	velocity := speedAbs(r.vehicle.Velocity())
	acceleration := r.vehicle.Acceleration()
	ctrl := r.vehicle.Control()

	status := messages.VehicleStatus{
		Header:       header,
		Velocity:     velocity,
		Acceleration: messages.Vector3{X: acceleration.X, Y: acceleration.Y, Z: acceleration.Z},
		Orientation:  orientation,
		Control: messages.VehicleControl{
			Throttle:        ctrl.Throttle,
			Steer:           ctrl.Steer,
			Brake:           ctrl.Brake,
			HandBrake:       ctrl.HandBrake,
			Reverse:         ctrl.Reverse,
			Gear:            ctrl.Gear,
			ManualGearShift: ctrl.ManualGearShift,
		},
	}
	r.publisher.PublishStatus(&status)

	pose := messages.PoseStamped{
		Header: header,
		Pose: messages.Pose{
			Position: messages.Vector3{
				X: transform.Location.X,
				Y: transform.Location.Y,
				Z: transform.Location.Z,
			},
			Orientation: orientation,
		},
	}
	r.publisher.PublishPose(&pose)

	canbus := messages.Canbus{
		Header:   header,
		Steering: ctrl.Steer,
		Throttle: ctrl.Throttle,
		Speed:    velocity,
		Brake:    ctrl.Brake,
		Accel:    acceleration.X,
		Checksum: 1,
	}
	r.publisher.PublishCanbus(&canbus)

	r.publishControlEvents(frame, &ctrl)

	// only send vehicle info once (in latched-mode)
	if !r.infoPublished {
		r.infoPublished = true
		r.publisher.PublishVehicleInfo(r.vehicleInfo(transform))
	}
}

func (r *Relay) publishControlEvents(frame uint64, ctrl *simulator.ControlCommand) {
	now := time.Now()
	frameRef := &events.FrameRef{
		Name: r.vehicle.RoleName(),
		Id:   fmt.Sprintf("%d", frame),
		CreatedAt: &timestamp.Timestamp{
			Seconds: now.Unix(),
			Nanos:   int32(now.Nanosecond()),
		},
	}
	r.publisher.PublishSteering(&events.SteeringMessage{
		FrameRef:   frameRef,
		Steering:   float32(ctrl.Steer),
		Confidence: 1.0,
	})
	r.publisher.PublishThrottle(&events.ThrottleMessage{
		FrameRef:   frameRef,
		Throttle:   float32(ctrl.Throttle),
		Confidence: 1.0,
	})
}

func (r *Relay) vehicleInfo(world simulator.Transform) *messages.VehicleInfo {
	physics := r.vehicle.Physics()

	info := messages.VehicleInfo{
		Id:                                      r.vehicle.Id(),
		Type:                                    r.vehicle.TypeId(),
		RoleName:                                r.vehicle.RoleName(),
		MaxRpm:                                  physics.MaxRpm,
		Moi:                                     physics.Moi,
		DampingRateFullThrottle:                 physics.DampingRateFullThrottle,
		DampingRateZeroThrottleClutchEngaged:    physics.DampingRateZeroThrottleClutchEngaged,
		DampingRateZeroThrottleClutchDisengaged: physics.DampingRateZeroThrottleClutchDisengaged,
		UseGearAutobox:                          physics.UseGearAutobox,
		GearSwitchTime:                          physics.GearSwitchTime,
		ClutchStrength:                          physics.ClutchStrength,
		Mass:                                    physics.Mass,
		DragCoefficient:                         physics.DragCoefficient,
		CenterOfMass: messages.Vector3{
			X: physics.CenterOfMass.X,
			Y: physics.CenterOfMass.Y,
			Z: physics.CenterOfMass.Z,
		},
	}

	for _, wheel := range physics.Wheels {
		info.Wheels = append(info.Wheels, messages.WheelInfo{
			TireFriction:       wheel.TireFriction,
			DampingRate:        wheel.DampingRate,
			MaxSteerAngle:      radians(wheel.MaxSteerAngle),
			Radius:             wheel.Radius,
			MaxBrakeTorque:     wheel.MaxBrakeTorque,
			MaxHandbrakeTorque: wheel.MaxHandbrakeTorque,
			Position:           wheelPositionInVehicleFrame(world, wheel.Position),
		})
	}
	return &info
}

/*
OnControlCommand forwards an inbound control command to the engine.

The command is applied only when the channel override flag matches the
current relay override state: primary commands when the override is
disabled, manual commands when it is enabled. Other commands are dropped.
*/
func (r *Relay) OnControlCommand(msg *messages.VehicleControl, manualOverride bool) {
	if manualOverride != r.overrideEnabled {
		r.logr.Debugf("drop control command, manual=%v but override=%v", manualOverride, r.overrideEnabled)
		return
	}
	cmd := simulator.ControlCommand{
		Throttle:        msg.Throttle,
		Steer:           msg.Steer,
		Brake:           msg.Brake,
		HandBrake:       msg.HandBrake,
		Reverse:         msg.Reverse,
		Gear:            msg.Gear,
		ManualGearShift: msg.ManualGearShift,
	}
	r.vehicle.ApplyControl(&cmd)
	if r.onControlApplied != nil {
		r.onControlApplied(r.vehicle.Id())
	}
}

// OnManualOverride switches the control source between the primary and the
// manual command topics
func (r *Relay) OnManualOverride(enabled bool) {
	r.logr.Infof("set manual override to %v", enabled)
	r.overrideEnabled = enabled
}

// OnAutopilot toggles the engine autopilot
func (r *Relay) OnAutopilot(enabled bool) {
	r.logr.Debugf("set autopilot to %v", enabled)
	r.vehicle.SetAutopilot(enabled)
}

func speedAbs(velocity simulator.Vector3) float64 {
	return math.Sqrt(velocity.X*velocity.X + velocity.Y*velocity.Y + velocity.Z*velocity.Z)
}
