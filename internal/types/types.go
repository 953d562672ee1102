package types

// Vector3 is a point in sensor space, metres, sensor at the origin.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// JointName identifies one skeletal joint.
type JointName string

const (
	SpineBase     JointName = "spine_base"
	SpineMid      JointName = "spine_mid"
	Neck          JointName = "neck"
	Head          JointName = "head"
	ShoulderLeft  JointName = "shoulder_left"
	ElbowLeft     JointName = "elbow_left"
	WristLeft     JointName = "wrist_left"
	HandLeft      JointName = "hand_left"
	ShoulderRight JointName = "shoulder_right"
	ElbowRight    JointName = "elbow_right"
	WristRight    JointName = "wrist_right"
	HandRight     JointName = "hand_right"
	HipLeft       JointName = "hip_left"
	KneeLeft      JointName = "knee_left"
	AnkleLeft     JointName = "ankle_left"
	FootLeft      JointName = "foot_left"
	HipRight      JointName = "hip_right"
	KneeRight     JointName = "knee_right"
	AnkleRight    JointName = "ankle_right"
	FootRight     JointName = "foot_right"
	SpineShoulder JointName = "spine_shoulder"
	HandTipLeft   JointName = "hand_tip_left"
	ThumbLeft     JointName = "thumb_left"
	HandTipRight  JointName = "hand_tip_right"
	ThumbRight    JointName = "thumb_right"
)

// JointOrder is the canonical joint ordering used on every outbound
// payload. It matches the sensor's native joint enumeration.
var JointOrder = []JointName{
	SpineBase, SpineMid, Neck, Head,
	ShoulderLeft, ElbowLeft, WristLeft, HandLeft,
	ShoulderRight, ElbowRight, WristRight, HandRight,
	HipLeft, KneeLeft, AnkleLeft, FootLeft,
	HipRight, KneeRight, AnkleRight, FootRight,
	SpineShoulder, HandTipLeft, ThumbLeft, HandTipRight, ThumbRight,
}

// ReferenceJoint is the joint used for subject-to-sensor distance.
const ReferenceJoint = SpineBase

// CandidateBody is one skeletal detection reported by the sensor for a
// single tick. The pipeline only reads it.
type CandidateBody struct {
	ID      int64                 `json:"id"`
	Tracked bool                  `json:"tracked"`
	Joints  map[JointName]Vector3 `json:"joints"`
}

// BodyFrame is one tick of candidate bodies.
type BodyFrame struct {
	Seq    uint64          `json:"seq"`
	Time   float64         `json:"time"`
	Bodies []CandidateBody `json:"bodies"`
}
