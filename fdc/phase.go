package fdc

// Phase is the top level position of the controller's state machine.
type Phase uint8

const (
	// PhaseIdle waits for a command byte.
	PhaseIdle Phase = iota
	// PhaseCommand accumulates parameter bytes.
	PhaseCommand
	// PhaseExecution transfers sector or track data.
	PhaseExecution
	// PhaseResult hands status and CHRN bytes back to the CPU.
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCommand:
		return "command"
	case PhaseExecution:
		return "execution"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// Direction is the data flow of a command's execution phase.
type Direction uint8

const (
	// DirectionIn is CPU to controller.
	DirectionIn Direction = iota
	// DirectionOut is controller to CPU.
	DirectionOut
)

// SeekState tracks the interrupt a drive raised after Seek or Recalibrate,
// which Sense Interrupt Status consumes.
type SeekState uint8

const (
	SeekIdle SeekState = iota
	Seeking
	Recalibrating
	SeekAcknowledged
)

func (s SeekState) pending() bool {
	return s == Seeking || s == Recalibrating
}
