package sim

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ScenarioScript is a deterministic, script-driven session.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest keyframe or press.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 12s
//	gyro:
//	  - t: 0s
//	    pitch: 0
//	    yaw: 0
//	  - t: 3s
//	    pitch: 4
//	    yaw: -4
//	presses:
//	  - t: 1s
//	    button: power
//	  - t: 9s
//	    button: power
//
// Gyro keyframes must use non-decreasing t values. Rates are linearly
// interpolated between keyframes.
type ScenarioScript struct {
	Version  int            `yaml:"version"`
	Duration time.Duration  `yaml:"duration"`
	Gyro     []GyroKeyframe `yaml:"gyro"`
	Presses  []Press        `yaml:"presses"`
}

// GyroKeyframe is a time-stamped pair of swing-axis rates in rad/s.
type GyroKeyframe struct {
	T     time.Duration `yaml:"t"`
	Pitch float64       `yaml:"pitch"`
	Yaw   float64       `yaml:"yaw"`
}

// Press is one button press.
type Press struct {
	T      time.Duration `yaml:"t"`
	Button string        `yaml:"button"`
}

const (
	ButtonPower = "power"
	ButtonAux   = "aux"
)

// Scenario is the validated, runtime representation.
type Scenario struct {
	script   ScenarioScript
	duration time.Duration
}

// LoadScenarioScript reads and unmarshals a YAML scenario script from path.
func LoadScenarioScript(path string) (ScenarioScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScenarioScript{}, err
	}
	return ParseScenarioScriptYAML(b)
}

// ParseScenarioScriptYAML parses a YAML scenario script.
func ParseScenarioScriptYAML(b []byte) (ScenarioScript, error) {
	var s ScenarioScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return ScenarioScript{}, err
	}
	return s, nil
}

// NewScenario validates script and returns a runtime Scenario.
func NewScenario(script ScenarioScript) (*Scenario, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version %d", script.Version)
	}
	if len(script.Gyro) == 0 {
		return nil, fmt.Errorf("gyro is required")
	}
	for i := range script.Gyro {
		if script.Gyro[i].T < 0 {
			return nil, fmt.Errorf("gyro[%d].t must be >= 0", i)
		}
		if i > 0 && script.Gyro[i].T < script.Gyro[i-1].T {
			return nil, fmt.Errorf("gyro must be sorted by t (index %d)", i)
		}
	}
	for i, p := range script.Presses {
		if p.T < 0 {
			return nil, fmt.Errorf("presses[%d].t must be >= 0", i)
		}
		if p.Button != ButtonPower && p.Button != ButtonAux {
			return nil, fmt.Errorf("presses[%d].button must be %q or %q", i, ButtonPower, ButtonAux)
		}
	}

	dur := script.Duration
	if dur <= 0 {
		dur = maxScriptTime(script)
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration is required (or deriveable from keyframes)")
	}
	return &Scenario{script: script, duration: dur}, nil
}

// Duration returns the effective scenario duration.
func (s *Scenario) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}

// Rates interpolates the gyro keyframes at elapsed, clamped to the
// scenario's duration.
func (s *Scenario) Rates(elapsed time.Duration) (pitch, yaw float64) {
	if s == nil {
		return 0, 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.duration {
		elapsed = s.duration
	}
	k0, k1, alpha := selectSegment(s.script.Gyro, elapsed)
	return lerp(k0.Pitch, k1.Pitch, alpha), lerp(k0.Yaw, k1.Yaw, alpha)
}

// PressTimes lists the press times for one button, sorted.
func (s *Scenario) PressTimes(button string) []time.Duration {
	if s == nil {
		return nil
	}
	var out []time.Duration
	for _, p := range s.script.Presses {
		if p.Button == button {
			out = append(out, p.T)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func maxScriptTime(s ScenarioScript) time.Duration {
	max := time.Duration(0)
	for _, kf := range s.Gyro {
		if kf.T > max {
			max = kf.T
		}
	}
	for _, p := range s.Presses {
		if p.T > max {
			max = p.T
		}
	}
	return max
}

func selectSegment(kfs []GyroKeyframe, t time.Duration) (GyroKeyframe, GyroKeyframe, float64) {
	if len(kfs) == 1 {
		return kfs[0], kfs[0], 0
	}
	idx := sort.Search(len(kfs), func(i int) bool { return kfs[i].T > t })
	if idx <= 0 {
		return kfs[0], kfs[0], 0
	}
	if idx >= len(kfs) {
		last := kfs[len(kfs)-1]
		return last, last, 0
	}
	k0 := kfs[idx-1]
	k1 := kfs[idx]
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1, k1, 0
	}
	alpha := float64(t-k0.T) / float64(dt)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return k0, k1, alpha
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
