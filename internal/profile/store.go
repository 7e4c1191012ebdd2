package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"saberd/internal/led"
)

var writeFileFn = writeFileAtomic

// Store owns the selected profile. Every successful selection re-reads the
// document, decodes the whole record and rewrites save_state exactly once
// before the new profile takes effect. A failure at any step leaves the
// previous profile in place.
//
// Not safe for concurrent use.
type Store struct {
	path      string
	soundsDir string

	names   []string
	index   int
	current Profile
}

// Open reads the document at path and selects the persisted profile.
// Soundfont directories resolve to soundsDir/<profile name>.
func Open(path, soundsDir string) (*Store, error) {
	s := &Store{path: path, soundsDir: soundsDir}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	idx, ok, err := doc.savedIndex()
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Printf("profile: %s has no %s, starting at 0", path, keySaveState)
	}
	if _, err := s.selectFrom(doc, idx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// Path is the profile document the store reads and rewrites.
func (s *Store) Path() string { return s.path }

// List returns profile names in document order as of the last selection.
func (s *Store) List() []string {
	return append([]string(nil), s.names...)
}

func (s *Store) Index() int { return s.index }

func (s *Store) Current() Profile { return s.current }

// Select activates profile i. An out of range index falls back to 0.
func (s *Store) Select(i int) (Profile, error) {
	doc, err := s.read()
	if err != nil {
		return s.current, err
	}
	return s.selectFrom(doc, i, false)
}

// Next activates the profile after the current one, wrapping to 0 past the
// end.
func (s *Store) Next() (Profile, error) {
	doc, err := s.read()
	if err != nil {
		return s.current, err
	}
	return s.selectFrom(doc, s.index+1, true)
}

func (s *Store) read() (*document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", s.path, err)
	}
	return parseDocument(b)
}

func (s *Store) selectFrom(doc *document, i int, cycling bool) (Profile, error) {
	if i < 0 || i >= doc.count() {
		if cycling {
			log.Printf("profile: end of profile list, jumping to top")
		} else {
			log.Printf("profile: WARNING invalid index %d (have %d), jumping to top", i, doc.count())
		}
		i = 0
	}

	name, rec := doc.entry(i)
	p, err := decodeProfile(name, rec)
	if err != nil {
		return s.current, err
	}
	p.FontPath = filepath.Join(s.soundsDir, name)

	b, err := doc.withSaveState(i)
	if err != nil {
		return s.current, fmt.Errorf("profile: encode: %w", err)
	}
	if err := writeFileFn(s.path, b); err != nil {
		return s.current, fmt.Errorf("profile: save %s: %w", s.path, err)
	}

	s.names = doc.names()
	s.index = i
	s.current = p
	for _, line := range p.LogLines() {
		log.Printf("profile: %s", line)
	}
	return p, nil
}

var requiredFloats = []string{
	"swing_threshold",
	"clash_threshold",
	"filter_alpha",
	"swing_sharpness",
	"transition_region_1",
	"transition_region_2",
	"transition_point_1",
	"transition_point_2",
}

func decodeProfile(name string, rec json.RawMessage) (Profile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil || fields == nil {
		return Profile{}, &ConfigError{Profile: name, Field: "(record)", Reason: "must be an object"}
	}
	p := Profile{Name: name}

	c, err := decodeColor(name, fields["color"])
	if err != nil {
		return Profile{}, err
	}
	p.Color = c

	vals := make(map[string]float64, len(requiredFloats))
	for _, field := range requiredFloats {
		v, ok := fields[field]
		if !ok {
			return Profile{}, &ConfigError{Profile: name, Field: field, Reason: "missing"}
		}
		var f float64
		if json.Unmarshal(v, &f) != nil {
			return Profile{}, &ConfigError{Profile: name, Field: field, Reason: "must be a number"}
		}
		vals[field] = f
	}
	p.SwingThreshold = vals["swing_threshold"]
	p.ClashThreshold = vals["clash_threshold"]
	p.FilterAlpha = vals["filter_alpha"]
	p.SwingSharpness = vals["swing_sharpness"]
	p.TransitionRegion1 = vals["transition_region_1"]
	p.TransitionRegion2 = vals["transition_region_2"]
	p.TransitionPoint1 = vals["transition_point_1"]
	p.TransitionPoint2 = vals["transition_point_2"]

	if err := validate(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func validate(p Profile) error {
	switch {
	case p.FilterAlpha < 0 || p.FilterAlpha > 1:
		return &ConfigError{Profile: p.Name, Field: "filter_alpha", Reason: "must be within [0,1]"}
	case p.SwingSharpness <= 0:
		return &ConfigError{Profile: p.Name, Field: "swing_sharpness", Reason: "must be > 0"}
	case p.TransitionRegion1 <= 0:
		return &ConfigError{Profile: p.Name, Field: "transition_region_1", Reason: "must be > 0"}
	case p.TransitionRegion2 <= 0:
		return &ConfigError{Profile: p.Name, Field: "transition_region_2", Reason: "must be > 0"}
	}
	return nil
}

// decodeColor reads an [r,g,b] list. A list of any other length falls back
// to white.
func decodeColor(name string, raw json.RawMessage) (led.Color, error) {
	if raw == nil {
		return led.Color{}, &ConfigError{Profile: name, Field: "color", Reason: "missing"}
	}
	var comps []int
	if json.Unmarshal(raw, &comps) != nil || comps == nil {
		return led.Color{}, &ConfigError{Profile: name, Field: "color", Reason: "must be a list of integers"}
	}
	if len(comps) != 3 {
		log.Printf("profile: %q has %d color components, using white", name, len(comps))
		return led.White, nil
	}
	for _, v := range comps {
		if v < 0 || v > 255 {
			return led.Color{}, &ConfigError{Profile: name, Field: "color", Reason: fmt.Sprintf("component %d outside 0..255", v)}
		}
	}
	return led.Color{R: uint8(comps[0]), G: uint8(comps[1]), B: uint8(comps[2])}, nil
}

// IsConfigError reports whether err carries a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// writeFileAtomic replaces path through a temp file in the same directory so
// a power cut never leaves a truncated document.
func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
