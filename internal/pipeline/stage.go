package pipeline

// Stage is one step of the per-chunk refinement pass.
type Stage int

const (
	Draft Stage = iota
	Reflect
	Revise
	TerminologyCheck
)

// Stages lists every stage in execution order.
var Stages = []Stage{Draft, Reflect, Revise, TerminologyCheck}

func (s Stage) String() string {
	switch s {
	case Draft:
		return "Draft"
	case Reflect:
		return "Reflect"
	case Revise:
		return "Revise"
	case TerminologyCheck:
		return "TerminologyCheck"
	default:
		return "Unknown"
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step is the recorded outcome of one stage.
type Step struct {
	Stage  Stage  `json:"step"`
	Result string `json:"result"`

	Tokens  int  `json:"-"`
	Skipped bool `json:"-"`
}

// Record is the append-only history of one chunk.
type Record struct {
	ChunkIndex int    `json:"-"`
	Steps      []Step `json:"steps"`
}

func (r *Record) append(s Step) {
	r.Steps = append(r.Steps, s)
}

// Final is the output of the last recorded stage.
func (r Record) Final() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[len(r.Steps)-1].Result
}

// Complete reports whether every stage has been recorded.
func (r Record) Complete() bool {
	return len(r.Steps) == len(Stages)
}

// Tokens sums the cost of the recorded steps.
func (r Record) Tokens() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Tokens
	}
	return n
}
