package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"saberd/internal/led"
)

const threeProfiles = `{
  "profiles": {
    "obi": {"color": [0, 0, 255], "swing_threshold": 0.5, "clash_threshold": 9, "filter_alpha": 0.4,
            "swing_sharpness": 1.5, "transition_region_1": 1.2, "transition_region_2": 1.2,
            "transition_point_1": 0.8, "transition_point_2": 4.0},
    "vader": {"color": [255, 0, 0], "swing_threshold": 0.7, "clash_threshold": 9, "filter_alpha": 0.3,
              "swing_sharpness": 2, "transition_region_1": 1, "transition_region_2": 1,
              "transition_point_1": 1, "transition_point_2": 3.5},
    "yoda": {"color": [0, 255, 0], "swing_threshold": 0.6, "clash_threshold": 9, "filter_alpha": 0.5,
             "swing_sharpness": 0.8, "transition_region_1": 1.5, "transition_region_2": 1.5,
             "transition_point_1": 0.5, "transition_point_2": 4.5}
  },
  "save_state": 2,
  "comment": "kept <as is>"
}`

func writeDoc(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

// countWrites wraps the atomic writer and counts calls.
func countWrites(t *testing.T) *int {
	t.Helper()
	n := 0
	old := writeFileFn
	writeFileFn = func(path string, b []byte) error {
		n++
		return old(path, b)
	}
	t.Cleanup(func() { writeFileFn = old })
	return &n
}

func TestOpen_SelectsSavedStateAndNextWraps(t *testing.T) {
	path := writeDoc(t, threeProfiles)
	s, err := Open(path, "/sd/sounds")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Path() != path {
		t.Fatalf("path=%q want %q", s.Path(), path)
	}
	if s.Index() != 2 || s.Current().Name != "yoda" {
		t.Fatalf("index=%d name=%q want 2 yoda", s.Index(), s.Current().Name)
	}
	if s.Current().FontPath != filepath.Join("/sd/sounds", "yoda") {
		t.Fatalf("font path=%q", s.Current().FontPath)
	}
	p, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if s.Index() != 0 || p.Name != "obi" {
		t.Fatalf("after wrap index=%d name=%q want 0 obi", s.Index(), p.Name)
	}
}

func TestSelect_EveryIndexMatchesList(t *testing.T) {
	s, err := Open(writeDoc(t, threeProfiles), "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	names := s.List()
	want := []string{"obi", "vader", "yoda"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("List=%v want %v", names, want)
	}
	for i := range names {
		p, err := s.Select(i)
		if err != nil {
			t.Fatalf("Select(%d): %v", i, err)
		}
		if s.List()[s.Index()] != names[i] || p.Name != names[i] {
			t.Fatalf("Select(%d) gave %q", i, p.Name)
		}
	}
}

func TestSelect_OutOfRangeFallsBackToZero(t *testing.T) {
	s, err := Open(writeDoc(t, threeProfiles), "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, i := range []int{3, 99, -1} {
		p, err := s.Select(i)
		if err != nil {
			t.Fatalf("Select(%d): %v", i, err)
		}
		if s.Index() != 0 || p.Name != "obi" {
			t.Fatalf("Select(%d) index=%d name=%q", i, s.Index(), p.Name)
		}
	}
}

func TestSelect_PersistsCompactOncePerSelection(t *testing.T) {
	writes := countWrites(t)
	path := writeDoc(t, threeProfiles)
	s, err := Open(path, "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if *writes != 1 {
		t.Fatalf("writes after Open=%d want 1", *writes)
	}
	if _, err := s.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if *writes != 2 {
		t.Fatalf("writes=%d want 2", *writes)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(b)
	if strings.ContainsAny(strings.Replace(got, "kept <as is>", "", 1), " \n\t") {
		t.Fatalf("document not compact: %s", got)
	}
	if !strings.Contains(got, `"save_state":1`) {
		t.Fatalf("save_state not rewritten: %s", got)
	}
	if !strings.HasPrefix(got, `{"profiles":{"obi":{"color":[0,0,255],"swing_threshold":0.5,`) {
		t.Fatalf("order or format changed: %s", got)
	}
	if strings.Index(got, `"obi"`) > strings.Index(got, `"vader"`) || strings.Index(got, `"vader"`) > strings.Index(got, `"yoda"`) {
		t.Fatalf("profile order not preserved: %s", got)
	}
	if !strings.Contains(got, `"comment":"kept <as is>"`) {
		t.Fatalf("unrelated keys not preserved: %s", got)
	}

	// The rewritten document reopens at the persisted selection.
	s2, err := Open(path, "/s")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.Index() != 1 || s2.Current().Name != "vader" {
		t.Fatalf("reopen index=%d name=%q", s2.Index(), s2.Current().Name)
	}
}

func TestSelect_MissingFieldKeepsPreviousProfile(t *testing.T) {
	doc := strings.Replace(threeProfiles, `"swing_sharpness": 2, `, "", 1)
	path := writeDoc(t, doc)
	s, err := Open(path, "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	before, _ := os.ReadFile(path)
	writes := countWrites(t)

	_, err = s.Select(1)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v want *ConfigError", err)
	}
	if ce.Profile != "vader" || ce.Field != "swing_sharpness" {
		t.Fatalf("config error=%+v", ce)
	}
	if s.Index() != 2 || s.Current().Name != "yoda" {
		t.Fatalf("previous profile not kept: index=%d name=%q", s.Index(), s.Current().Name)
	}
	after, _ := os.ReadFile(path)
	if *writes != 0 || string(before) != string(after) {
		t.Fatalf("failed selection must not write (writes=%d)", *writes)
	}
}

func TestSelect_WriteFailureKeepsPreviousProfile(t *testing.T) {
	s, err := Open(writeDoc(t, threeProfiles), "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	old := writeFileFn
	writeFileFn = func(string, []byte) error { return errors.New("read-only filesystem") }
	t.Cleanup(func() { writeFileFn = old })

	if _, err := s.Next(); err == nil {
		t.Fatalf("expected error")
	}
	if s.Index() != 2 || s.Current().Name != "yoda" {
		t.Fatalf("index=%d name=%q want 2 yoda", s.Index(), s.Current().Name)
	}
}

func TestDecodeColor(t *testing.T) {
	cases := []struct {
		name    string
		color   string
		want    led.Color
		wantErr bool
	}{
		{"rgb", "[1, 2, 3]", led.Color{R: 1, G: 2, B: 3}, false},
		{"two", "[1, 2]", led.White, false},
		{"four", "[1, 2, 3, 4]", led.White, false},
		{"overflow", "[1, 2, 300]", led.Color{}, true},
		{"notlist", `"red"`, led.Color{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := strings.Replace(threeProfiles, `"color": [0, 0, 255]`, `"color": `+tc.color, 1)
			doc = strings.Replace(doc, `"save_state": 2`, `"save_state": 0`, 1)
			s, err := Open(writeDoc(t, doc), "/s")
			if tc.wantErr {
				if !IsConfigError(err) {
					t.Fatalf("err=%v want ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if s.Current().Color != tc.want {
				t.Fatalf("color=%v want %v", s.Current().Color, tc.want)
			}
		})
	}
}

func TestValidate_RejectsBadParameters(t *testing.T) {
	cases := []struct{ from, to, field string }{
		{`"filter_alpha": 0.5`, `"filter_alpha": 1.5`, "filter_alpha"},
		{`"swing_sharpness": 0.8`, `"swing_sharpness": 0`, "swing_sharpness"},
		{`"transition_region_1": 1.5`, `"transition_region_1": -1`, "transition_region_1"},
		{`"filter_alpha": 0.5`, `"filter_alpha": "0.5"`, "filter_alpha"},
	}
	for _, tc := range cases {
		_, err := Open(writeDoc(t, strings.Replace(threeProfiles, tc.from, tc.to, 1)), "/s")
		var ce *ConfigError
		if !errors.As(err, &ce) || ce.Field != tc.field {
			t.Fatalf("%s: err=%v want ConfigError on %s", tc.to, err, tc.field)
		}
	}
}

func TestOpen_DocumentErrors(t *testing.T) {
	cases := []struct{ name, doc string }{
		{"notobject", `[1, 2]`},
		{"noprofiles", `{"save_state": 0}`},
		{"empty", `{"profiles": {}, "save_state": 0}`},
		{"badstate", strings.Replace(threeProfiles, `"save_state": 2`, `"save_state": "two"`, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Open(writeDoc(t, tc.doc), "/s"); !IsConfigError(err) {
				t.Fatalf("err=%v want ConfigError", err)
			}
		})
	}
}

func TestOpen_MissingSaveStateStartsAtZero(t *testing.T) {
	path := writeDoc(t, strings.Replace(threeProfiles, `"save_state": 2,`, "", 1))
	s, err := Open(path, "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Index() != 0 {
		t.Fatalf("index=%d want 0", s.Index())
	}
	b, _ := os.ReadFile(path)
	if !strings.HasSuffix(string(b), `,"save_state":0}`) {
		t.Fatalf("save_state not appended: %s", b)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.json"), "/s"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConfigErrorMessage(t *testing.T) {
	e := &ConfigError{Profile: "obi", Field: "filter_alpha", Reason: "missing"}
	if e.Error() != `profile "obi": filter_alpha: missing` {
		t.Fatalf("msg=%q", e.Error())
	}
}

// Values the daemon never interprets must survive a save_state rewrite with
// their original text.
func TestSelect_PreservesForeignValuesVerbatim(t *testing.T) {
	doc := strings.Replace(threeProfiles, `"comment": "kept <as is>"`,
		`"url": "http:\/\/x", "serial": 12345678901234567890, "k": 1E3`, 1)
	path := writeDoc(t, doc)
	s, err := Open(path, "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(b)
	for _, want := range []string{`"url":"http:\/\/x"`, `"serial":12345678901234567890`, `"k":1E3`, `"save_state":1`} {
		if !strings.Contains(got, want) {
			t.Fatalf("document missing %s: %s", want, got)
		}
	}
	if s.Index() != 1 || s.Current().Name != "vader" {
		t.Fatalf("index=%d name=%q want 1 vader", s.Index(), s.Current().Name)
	}
}

func TestOpen_ProfileOrderFollowsDocument(t *testing.T) {
	doc := `{"profiles": {"zeta": RECORD, "alpha": RECORD, "mid": RECORD}, "save_state": 0}`
	rec := `{"color": [1, 2, 3], "swing_threshold": 1, "clash_threshold": 1, "filter_alpha": 1,
		"swing_sharpness": 1, "transition_region_1": 1, "transition_region_2": 1,
		"transition_point_1": 1, "transition_point_2": 1}`
	s, err := Open(writeDoc(t, strings.ReplaceAll(doc, "RECORD", rec)), "/s")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := strings.Join(s.List(), ","); got != "zeta,alpha,mid" {
		t.Fatalf("List=%s want zeta,alpha,mid", got)
	}
}
