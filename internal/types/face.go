package types

// AnimationUnitCount is the number of facial animation-unit weights the
// sensor reports per alignment.
const AnimationUnitCount = 17

// AnimationUnitNames lists the animation units in the canonical order
// used on every outbound face payload. It matches the sensor's native
// face-shape enumeration.
var AnimationUnitNames = [AnimationUnitCount]string{
	"jaw_open",
	"lip_pucker",
	"jaw_slide_right",
	"lip_stretcher_right",
	"lip_stretcher_left",
	"lip_corner_puller_left",
	"lip_corner_puller_right",
	"lip_corner_depressor_left",
	"lip_corner_depressor_right",
	"cheek_puff_left",
	"cheek_puff_right",
	"eye_closed_left",
	"eye_closed_right",
	"eyebrow_lowerer_right",
	"eyebrow_lowerer_left",
	"lower_lip_depressor_left",
	"lower_lip_depressor_right",
}

// FaceFrame is one face-alignment measurement for a tracking identity:
// head orientation in degrees plus the animation-unit weights. Face
// frames arrive on their own cadence, independent of body frames.
type FaceFrame struct {
	Seq   uint64  `json:"seq"`
	Time  float64 `json:"time"`
	ID    int64   `json:"id"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`

	AnimationUnits [AnimationUnitCount]float64 `json:"au"`
}
