package service

// Sequence is an ordered list of note tokens ("C5q", "E6e", "rq"...).
type Sequence []string

// Feedback sequences for the appliance.
var (
	BeepSound      = Sequence{"E6q", "C6q"}
	JoySound       = Sequence{"C5q", "E5q", "C6q"}
	SadSound       = Sequence{"C6q", "E5q", "C5q"}
	ModelLoadSound = Sequence{"C6w", "c6w", "C6w"}
)

// Toner is the narrow tone-hardware contract: blocking playback of a note
// sequence. Satisfied by *buzzer.Player.
type Toner interface {
	Play(tokens ...string) error
}

// ToneActuator plays audio feedback asynchronously: playback happens on the
// service's consumer goroutine, never blocking the caller.
type ToneActuator struct {
	worker *Worker[Sequence]
}

// NewToneActuator starts the tone service on the given hardware.
func NewToneActuator(t Toner, opts Options) *ToneActuator {
	if opts.Name == "" {
		opts.Name = "tone"
	}
	return &ToneActuator{
		worker: NewWorker(opts, func(seq Sequence) error {
			return t.Play(seq...)
		}, nil),
	}
}

// Play enqueues a sequence for playback. Fire-and-forget.
func (a *ToneActuator) Play(seq Sequence) {
	a.worker.Submit(seq)
}

// Close drains pending playback and stops the service.
func (a *ToneActuator) Close() {
	a.worker.Close()
}

// Err reports the most recent playback failure, if any.
func (a *ToneActuator) Err() error {
	return a.worker.Err()
}
