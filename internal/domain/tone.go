package domain

import "fmt"

// Tone selects the stylistic instructions injected into a generation request.
type Tone string

const (
	ToneProfessional  Tone = "Professional"
	ToneWitty         Tone = "Witty"
	ToneUrgent        Tone = "Urgent"
	ToneInspirational Tone = "Inspirational"
	ToneFunny         Tone = "Funny"
)

var tones = map[Tone]struct{}{
	ToneProfessional:  {},
	ToneWitty:         {},
	ToneUrgent:        {},
	ToneInspirational: {},
	ToneFunny:         {},
}

func Tones() []Tone {
	return []Tone{ToneProfessional, ToneWitty, ToneUrgent, ToneInspirational, ToneFunny}
}

func ParseTone(s string) (Tone, error) {
	t := Tone(s)
	if _, ok := tones[t]; !ok {
		return "", fmt.Errorf("unknown tone %q", s)
	}
	return t, nil
}
