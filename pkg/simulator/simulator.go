package simulator

type MsgType string

const (
	MsgTypeTelemetry     = MsgType("telemetry")
	MsgTypeControl       = MsgType("control")
	MsgTypeVehicleConfig = MsgType("vehicle_config")
	MsgTypeSetAutopilot  = MsgType("set_autopilot")
)

type Msg struct {
	MsgType MsgType `json:"msg_type"`
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation angles in degrees, engine convention
type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

type Transform struct {
	Location Vector3  `json:"location"`
	Rotation Rotation `json:"rotation"`
}

type ControlCommand struct {
	Throttle        float64 `json:"throttle"`
	Steer           float64 `json:"steer"`
	Brake           float64 `json:"brake"`
	HandBrake       bool    `json:"hand_brake"`
	Reverse         bool    `json:"reverse"`
	Gear            int32   `json:"gear"`
	ManualGearShift bool    `json:"manual_gear_shift"`
}

// TelemetryMsg is sent by the engine once per simulation frame
type TelemetryMsg struct {
	MsgType      MsgType        `json:"msg_type"`
	Frame        uint64         `json:"frame"`
	Time         float64        `json:"time"`
	Transform    Transform      `json:"transform"`
	Velocity     Vector3        `json:"velocity"`
	Acceleration Vector3        `json:"acceleration"`
	Control      ControlCommand `json:"control"`
}

// ControlMsg is json msg used to drive the ego vehicle. MsgType must be filled with "control"
type ControlMsg struct {
	MsgType MsgType `json:"msg_type"`
	ControlCommand
}

type AutopilotMsg struct {
	MsgType MsgType `json:"msg_type"`
	Enabled bool    `json:"enabled"`
}

/*
WheelPhysics describes one wheel of the ego vehicle.

Position is expressed in the map frame in centimeters,
max_steer_angle in degrees.
*/
type WheelPhysics struct {
	TireFriction       float64 `json:"tire_friction"`
	DampingRate        float64 `json:"damping_rate"`
	MaxSteerAngle      float64 `json:"max_steer_angle"`
	Radius             float64 `json:"radius"`
	MaxBrakeTorque     float64 `json:"max_brake_torque"`
	MaxHandbrakeTorque float64 `json:"max_handbrake_torque"`
	Position           Vector3 `json:"position"`
}

type PhysicsControl struct {
	MaxRpm                                  float64        `json:"max_rpm"`
	Moi                                     float64        `json:"moi"`
	DampingRateFullThrottle                 float64        `json:"damping_rate_full_throttle"`
	DampingRateZeroThrottleClutchEngaged    float64        `json:"damping_rate_zero_throttle_clutch_engaged"`
	DampingRateZeroThrottleClutchDisengaged float64        `json:"damping_rate_zero_throttle_clutch_disengaged"`
	UseGearAutobox                          bool           `json:"use_gear_autobox"`
	GearSwitchTime                          float64        `json:"gear_switch_time"`
	ClutchStrength                          float64        `json:"clutch_strength"`
	Mass                                    float64        `json:"mass"`
	DragCoefficient                         float64        `json:"drag_coefficient"`
	CenterOfMass                            Vector3        `json:"center_of_mass"`
	Wheels                                  []WheelPhysics `json:"wheels"`
}

// VehicleConfigMsg is sent once by the engine after the ego vehicle is spawned
type VehicleConfigMsg struct {
	MsgType  MsgType        `json:"msg_type"`
	Id       string         `json:"id"`
	TypeId   string         `json:"type_id"`
	RoleName string         `json:"role_name"`
	Physics  PhysicsControl `json:"physics"`
}

// FrameEvent notifies that a new telemetry frame has been stored
type FrameEvent struct {
	Frame uint64
	Time  float64
}
