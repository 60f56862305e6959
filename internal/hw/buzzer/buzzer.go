package buzzer

import (
	"fmt"
	"math"
	"time"

	"github.com/ZuhairGhias/joycam/internal/debug"
	"github.com/ZuhairGhias/joycam/internal/hw/gpio"
)

// Player drives a piezo buzzer on a single GPIO pin by toggling it as a
// square wave at the note's frequency. Notes are written in a compact
// letter notation, e.g. "C5q" (C, octave 5, quarter note), "E6e", "rq"
// (quarter rest). Sharps and flats use '#' and 'b': "F#4h", "Bb3e".
type Player struct {
	gpio gpio.Driver
	pin  int
	bpm  int
}

// Note is one parsed element of a tone sequence. A rest has Freq 0.
type Note struct {
	Freq     float64 // Hz; 0 means rest
	Duration time.Duration
}

// semitone offsets within an octave, relative to C.
var semitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// note length letters in quarter-note units.
var lengths = map[byte]float64{
	'w': 4, 'h': 2, 'q': 1, 'e': 0.5, 's': 0.25,
}

// NewPlayer creates a buzzer player on the given pin at the given tempo.
func NewPlayer(g gpio.Driver, pin, bpm int) *Player {
	_ = g.SetupPin(pin, gpio.Output)
	_ = g.WritePin(pin, gpio.Low)
	if bpm <= 0 {
		bpm = 10
	}
	return &Player{
		gpio: g,
		pin:  pin,
		bpm:  bpm,
	}
}

// ParseNote parses a single note token at the given tempo.
// Grammar: pitch letter (A-G, case-insensitive, or 'r' for a rest),
// optional '#'/'b', optional octave digit (default 4), optional length
// letter w/h/q/e/s (default quarter).
func ParseNote(token string, bpm int) (Note, error) {
	if token == "" {
		return Note{}, fmt.Errorf("empty note")
	}
	quarter := time.Duration(float64(time.Minute) / float64(bpm))

	i := 0
	letter := token[i]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	rest := token[i] == 'r' || token[i] == 'R'
	offset, ok := semitones[letter]
	if !ok && !rest {
		return Note{}, fmt.Errorf("invalid pitch %q in note %q", token[i], token)
	}
	i++

	if !rest && i < len(token) {
		switch token[i] {
		case '#':
			offset++
			i++
		case 'b':
			offset--
			i++
		}
	}

	octave := 4
	if i < len(token) && token[i] >= '1' && token[i] <= '8' {
		octave = int(token[i] - '0')
		i++
	}

	beats := 1.0
	if i < len(token) {
		b, ok := lengths[token[i]]
		if !ok {
			return Note{}, fmt.Errorf("invalid length %q in note %q", token[i], token)
		}
		beats = b
		i++
	}
	if i != len(token) {
		return Note{}, fmt.Errorf("trailing characters in note %q", token)
	}

	n := Note{Duration: time.Duration(beats * float64(quarter))}
	if !rest {
		// Equal temperament relative to A4 = 440 Hz.
		midi := (octave+1)*12 + offset
		n.Freq = 440 * math.Pow(2, float64(midi-69)/12)
	}
	return n, nil
}

// ParseSequence parses all tokens of a sequence.
func ParseSequence(tokens []string, bpm int) ([]Note, error) {
	notes := make([]Note, 0, len(tokens))
	for _, tok := range tokens {
		n, err := ParseNote(tok, bpm)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Play plays a note sequence synchronously. It blocks until the whole
// sequence has sounded; callers wanting async playback go through a service.
func (p *Player) Play(tokens ...string) error {
	notes, err := ParseSequence(tokens, p.bpm)
	if err != nil {
		return err
	}
	debug.Verbose("Buzzer: playing %d note(s) on pin %d", len(notes), p.pin)
	for _, n := range notes {
		if err := p.sound(n); err != nil {
			_ = p.gpio.WritePin(p.pin, gpio.Low)
			return err
		}
	}
	return p.gpio.WritePin(p.pin, gpio.Low)
}

// sound emits one note as a square wave: HIGH/LOW half-cycles at the note
// frequency for the note duration.
func (p *Player) sound(n Note) error {
	if n.Freq <= 0 {
		time.Sleep(n.Duration)
		return nil
	}
	half := time.Duration(float64(time.Second) / n.Freq / 2)
	cycles := int(n.Duration / (2 * half))
	for i := 0; i < cycles; i++ {
		if err := p.gpio.WritePin(p.pin, gpio.High); err != nil {
			return err
		}
		time.Sleep(half)
		if err := p.gpio.WritePin(p.pin, gpio.Low); err != nil {
			return err
		}
		time.Sleep(half)
	}
	return nil
}
