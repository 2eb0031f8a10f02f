package preview

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is what a selection previews as.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// kindOf classifies a declared media type.
func kindOf(mediaType string) Kind {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	case strings.HasPrefix(mediaType, "video/"):
		return KindVideo
	default:
		return KindNone
	}
}

// Phase of the simulated detection.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

// Label is the simulated verdict.
type Label int

const (
	LabelNone Label = iota
	LabelAuthentic
	LabelDeepfake
)

func (l Label) String() string {
	switch l {
	case LabelAuthentic:
		return "Authentic"
	case LabelDeepfake:
		return "Deepfake"
	default:
		return ""
	}
}

// DeepfakeThreshold is the score above which a file is labelled deepfake.
const DeepfakeThreshold = 0.5

// Classify labels a score in [0, 1).
func Classify(score float64) Label {
	if score > DeepfakeThreshold {
		return LabelDeepfake
	}
	return LabelAuthentic
}

// File is a user-selected file as handed over by the picker or a drop.
type File struct {
	Name string
	Type string // declared media type, e.g. "image/png"
	Data []byte
}

// Preview is what the view shows for the current selection.
type Preview struct {
	Kind   Kind
	Name   string
	Source string // data URL for images, object URL for videos
	Width  int    // images only, 0 when unknown
	Height int
}

// Selection is the current file and its preview resources.
type Selection struct {
	File    *File
	Preview Preview

	// objectURL is released before the selection is replaced.
	objectURL string
}

// Result is the state of the simulated detection.
type Result struct {
	Phase Phase
	Label Label
	Score float64
}

// Message is the sentence rendered in the result area.
func (r Result) Message() string {
	switch r.Phase {
	case PhaseRunning:
		return "Simulation in progress..."
	case PhaseDone:
		if r.Label == LabelDeepfake {
			return "Simulation: likely deepfake."
		}
		return "Simulation: likely authentic."
	default:
		return ""
	}
}

// ScoreText formats the score with three decimals.
func (r Result) ScoreText() string {
	return fmt.Sprintf("%.3f", r.Score)
}

// User-facing validation failures.
var (
	ErrNoFile          = errors.New("no file selected")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrMissingElements = errors.New("preview: required view elements missing")
	ErrLoading         = errors.New("file still loading")
)

// ValidationError is reported to the user; it never changes state.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	errUnsupported = &ValidationError{Err: ErrUnsupportedType, Message: "Please select an image or a video."}
	errNoFile      = &ValidationError{Err: ErrNoFile, Message: "Select an image or a video first to run the simulation."}
	errLoading     = &ValidationError{Err: ErrLoading, Message: "The selected file is still loading, try again in a moment."}
)
