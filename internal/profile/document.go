package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/sjson"
)

// document is the parsed profile file. The raw bytes are kept so a rewrite
// only touches save_state; profile order comes from the token stream.
type document struct {
	raw       []byte
	profiles  []entry
	saveState json.RawMessage
}

type entry struct {
	name   string
	record json.RawMessage
}

const (
	keyProfiles  = "profiles"
	keySaveState = "save_state"
)

func parseDocument(b []byte) (*document, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(b, &root); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, &ConfigError{Reason: "document must be an object"}
		}
		return nil, &ConfigError{Reason: fmt.Sprintf("parse: %v", err)}
	}
	if root == nil {
		return nil, &ConfigError{Reason: "document must be an object"}
	}
	raw, ok := root[keyProfiles]
	if !ok {
		return nil, &ConfigError{Field: keyProfiles, Reason: "missing"}
	}
	entries, err := orderedEntries(raw)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &ConfigError{Field: keyProfiles, Reason: "no profiles defined"}
	}
	return &document{raw: b, profiles: entries, saveState: root[keySaveState]}, nil
}

// orderedEntries walks an object's tokens so keys come back in file order.
func orderedEntries(raw json.RawMessage) ([]entry, error) {
	notObject := &ConfigError{Field: keyProfiles, Reason: "must be an object"}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, notObject
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, notObject
	}
	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ConfigError{Field: keyProfiles, Reason: fmt.Sprintf("parse: %v", err)}
		}
		name, _ := tok.(string)
		var rec json.RawMessage
		if err := dec.Decode(&rec); err != nil {
			return nil, &ConfigError{Profile: name, Reason: fmt.Sprintf("parse: %v", err)}
		}
		out = append(out, entry{name: name, record: rec})
	}
	return out, nil
}

func (d *document) names() []string {
	out := make([]string, 0, len(d.profiles))
	for _, e := range d.profiles {
		out = append(out, e.name)
	}
	return out
}

func (d *document) count() int { return len(d.profiles) }

func (d *document) entry(i int) (string, json.RawMessage) {
	return d.profiles[i].name, d.profiles[i].record
}

// savedIndex reports the persisted selection; ok is false when absent.
func (d *document) savedIndex() (idx int, ok bool, err error) {
	if d.saveState == nil {
		return 0, false, nil
	}
	if err := json.Unmarshal(d.saveState, &idx); err != nil {
		return 0, false, &ConfigError{Field: keySaveState, Reason: "must be an integer"}
	}
	return idx, true, nil
}

// withSaveState returns the document with save_state set to idx and every
// insignificant byte of whitespace removed. Other values keep their exact
// text.
func (d *document) withSaveState(idx int) ([]byte, error) {
	out, err := sjson.SetBytes(d.raw, keySaveState, idx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
