package audio

import "sync"

// Null is a Device that plays nothing. It keeps levels and play state so the
// simulator and monitor can show what real output would do.
type Null struct {
	mu      sync.Mutex
	voices  [VoiceCount]nullVoice
	playing bool
	opened  []string
	resets  int
}

type nullClip struct{ path string }

func (c *nullClip) Close() error { return nil }

type nullVoice struct {
	n     *Null
	clip  Clip
	loop  bool
	level float64
}

func NewNull() *Null {
	n := &Null{}
	for i := range n.voices {
		n.voices[i].n = n
	}
	return n
}

func (n *Null) Open(path string) (Clip, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, path)
	return &nullClip{path: path}, nil
}

func (n *Null) Voice(id VoiceID) Voice {
	if id < 0 || id >= VoiceCount {
		return &nullVoice{n: n}
	}
	return &n.voices[id]
}

func (n *Null) SwingBus() Clip { return &nullClip{path: "swing-bus"} }

func (n *Null) Play() error {
	n.mu.Lock()
	n.playing = true
	n.mu.Unlock()
	return nil
}

func (n *Null) PlayClip(c Clip) error {
	n.mu.Lock()
	n.playing = false
	n.mu.Unlock()
	return nil
}

func (n *Null) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
	for i := range n.voices {
		n.voices[i].clip = nil
	}
}

func (n *Null) Reset() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets++
	for i := range n.voices {
		n.voices[i] = nullVoice{n: n}
	}
	return nil
}

func (n *Null) Close() error { return nil }

// Playing reports whether the main mix is running.
func (n *Null) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}

// Opened lists every path passed to Open.
func (n *Null) Opened() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.opened...)
}

func (n *Null) Resets() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resets
}

func (v *nullVoice) Play(c Clip, loop bool) {
	v.n.mu.Lock()
	v.clip, v.loop = c, loop
	v.n.mu.Unlock()
}

func (v *nullVoice) SetLevel(level float64) {
	v.n.mu.Lock()
	v.level = ClampLevel(level)
	v.n.mu.Unlock()
}

func (v *nullVoice) Level() float64 {
	v.n.mu.Lock()
	defer v.n.mu.Unlock()
	return v.level
}

// Active reports whether the voice has a clip attached.
func (v *nullVoice) Active() bool {
	v.n.mu.Lock()
	defer v.n.mu.Unlock()
	return v.clip != nil
}
