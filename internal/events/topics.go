package events

const (
	// TopicGate carries voice-activity transitions.
	TopicGate = "pipeline.gate"
	// TopicPrediction carries the ephemeral per-tick classifier readout.
	TopicPrediction = "pipeline.prediction"
	// TopicDecision carries the once-per-utterance committed label.
	TopicDecision = "pipeline.decision"
	// TopicStatus carries operational status text (training, model I/O).
	TopicStatus = "pipeline.status"
)

// GateChange reports a voice-activity state transition.
type GateChange struct {
	Speaking bool    `json:"speaking"`
	Energy   float64 `json:"energy"`
}

// Prediction is the per-tick readout. Label is empty when the current
// window produced no usable prediction.
type Prediction struct {
	Class      int     `json:"class"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Decision is the stable label committed for one utterance.
type Decision struct {
	Class int    `json:"class"`
	Label string `json:"label"`
}

// Status is free-form operational text for the UI.
type Status struct {
	Text string `json:"text"`
}
