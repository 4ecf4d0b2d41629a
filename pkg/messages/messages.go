package messages

// Header stamps a message with the simulation frame and time, expressed in
// the given reference frame
type Header struct {
	Frame   uint64  `json:"frame"`
	Stamp   float64 `json:"stamp"`
	FrameId string  `json:"frame_id"`
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type VehicleControl struct {
	Throttle        float64 `json:"throttle"`
	Steer           float64 `json:"steer"`
	Brake           float64 `json:"brake"`
	HandBrake       bool    `json:"hand_brake"`
	Reverse         bool    `json:"reverse"`
	Gear            int32   `json:"gear"`
	ManualGearShift bool    `json:"manual_gear_shift"`
}

// VehicleStatus is published once per simulation frame
type VehicleStatus struct {
	Header       Header         `json:"header"`
	Velocity     float64        `json:"velocity"`
	Acceleration Vector3        `json:"acceleration"`
	Orientation  Quaternion     `json:"orientation"`
	Control      VehicleControl `json:"control"`
}

type Pose struct {
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// Canbus mirrors the vehicle bus view of the control state. Checksum is a
// placeholder, always 1.
type Canbus struct {
	Header   Header  `json:"header"`
	Steering float64 `json:"steering"`
	Throttle float64 `json:"throttle"`
	Speed    float64 `json:"speed"`
	Brake    float64 `json:"brake"`
	Accel    float64 `json:"accel"`
	Checksum uint8   `json:"checksum"`
}

// WheelInfo positions are expressed in the vehicle frame in meters,
// max_steer_angle in radians
type WheelInfo struct {
	TireFriction       float64 `json:"tire_friction"`
	DampingRate        float64 `json:"damping_rate"`
	MaxSteerAngle      float64 `json:"max_steer_angle"`
	Radius             float64 `json:"radius"`
	MaxBrakeTorque     float64 `json:"max_brake_torque"`
	MaxHandbrakeTorque float64 `json:"max_handbrake_torque"`
	Position           Vector3 `json:"position"`
}

// VehicleInfo is published at most once per vehicle, in latched mode
type VehicleInfo struct {
	Id                                      string      `json:"id"`
	Type                                    string      `json:"type"`
	RoleName                                string      `json:"role_name"`
	Wheels                                  []WheelInfo `json:"wheels"`
	MaxRpm                                  float64     `json:"max_rpm"`
	Moi                                     float64     `json:"moi"`
	DampingRateFullThrottle                 float64     `json:"damping_rate_full_throttle"`
	DampingRateZeroThrottleClutchEngaged    float64     `json:"damping_rate_zero_throttle_clutch_engaged"`
	DampingRateZeroThrottleClutchDisengaged float64     `json:"damping_rate_zero_throttle_clutch_disengaged"`
	UseGearAutobox                          bool        `json:"use_gear_autobox"`
	GearSwitchTime                          float64     `json:"gear_switch_time"`
	ClutchStrength                          float64     `json:"clutch_strength"`
	Mass                                    float64     `json:"mass"`
	DragCoefficient                         float64     `json:"drag_coefficient"`
	CenterOfMass                            Vector3     `json:"center_of_mass"`
}

// BoolMsg carries the manual override and autopilot switches
type BoolMsg struct {
	Data bool `json:"data"`
}
