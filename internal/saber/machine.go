// Package saber is the control loop: the ignition state machine and the
// per-tick motion to mixer path.
package saber

import (
	"log"
	"math"
	"time"

	"saberd/internal/audio"
	"saberd/internal/blade"
	"saberd/internal/config"
	"saberd/internal/led"
	"saberd/internal/motion"
	"saberd/internal/profile"
	"saberd/internal/swing"
)

// Gyro reads the two swing axes in rad/s.
type Gyro interface {
	AngularVelocity() (pitch, yaw float64, err error)
}

// Button reports one event per physical press.
type Button interface {
	Pressed() bool
}

// Profiles is the part of the profile store the loop drives.
type Profiles interface {
	Current() profile.Profile
	Index() int
	List() []string
	Next() (profile.Profile, error)
}

type Hardware struct {
	Audio     audio.Device
	Blade     led.Strip
	Indicator led.Strip
	Gyro      Gyro
	Power     Button
	Aux       Button
}

type Config struct {
	Period        time.Duration
	ButtonHoldoff time.Duration
	FrameDelay    time.Duration
	Hold          time.Duration
	Settle        time.Duration

	HumCap          float64
	HumFloor        float64
	IgniteStep      float64
	ExtinguishStart float64
	ExtinguishStep  float64
	HumFadeStep     float64
}

// ConfigFrom picks the loop settings out of the daemon config.
func ConfigFrom(c config.Config) Config {
	return Config{
		Period:          c.Loop.Period,
		ButtonHoldoff:   config.Duration(c.Loop.ButtonHoldoff),
		FrameDelay:      c.Blade.FrameDelay,
		Hold:            config.Duration(c.Blade.Hold),
		Settle:          config.Duration(c.Audio.Settle),
		HumCap:          c.Audio.HumCap,
		HumFloor:        config.Float(c.Audio.HumFloor),
		IgniteStep:      c.Blade.IgniteStep,
		ExtinguishStart: config.Float(c.Blade.ExtinguishStart),
		ExtinguishStep:  c.Blade.ExtinguishStep,
		HumFadeStep:     c.Blade.HumFadeStep,
	}
}

type stillGyro struct{}

func (stillGyro) AngularVelocity() (float64, float64, error) { return 0, 0, nil }

type noButton struct{}

func (noButton) Pressed() bool { return false }

// Machine runs the ignition state machine. Not safe for concurrent use: one
// goroutine calls Boot, Tick and Shutdown.
type Machine struct {
	cfg      Config
	hw       Hardware
	profiles Profiles

	font   *audio.Font
	blade  *blade.Animator
	filter motion.Filter
	engine *swing.Engine

	sess Session
	anim animation

	lastErr string
}

func New(cfg Config, hw Hardware, profiles Profiles) *Machine {
	if hw.Audio == nil {
		hw.Audio = audio.NewNull()
	}
	if hw.Blade == nil {
		hw.Blade = led.NewBuffer(0)
	}
	if hw.Indicator == nil {
		hw.Indicator = led.NewBuffer(1)
	}
	if hw.Gyro == nil {
		hw.Gyro = stillGyro{}
	}
	if hw.Power == nil {
		hw.Power = noButton{}
	}
	if hw.Aux == nil {
		hw.Aux = noButton{}
	}
	return &Machine{
		cfg:      cfg,
		hw:       hw,
		profiles: profiles,
		font:     audio.NewFont(hw.Audio, cfg.Settle),
		blade:    blade.NewAnimator(hw.Blade),
		engine:   swing.NewEngine(cfg.HumCap, cfg.HumFloor),
	}
}

// Boot adopts the store's current profile, loads its soundfont and enters
// Standby. A soundfont failure is returned; the machine is still usable and
// runs silent.
func (m *Machine) Boot() error {
	m.sess.Profile = m.profiles.Current()
	m.enter(Standby)
	return m.font.Load(m.sess.Profile.FontPath)
}

func (m *Machine) State() State { return m.sess.State }

// Snapshot returns a copy of the session.
func (m *Machine) Snapshot() Session {
	s := m.sess
	s.Lit = m.blade.Lit()
	s.Animation = m.anim.kind.String()
	s.Frame = m.anim.frame
	s.FrameCount = m.anim.frames
	s.FontLoaded = m.font.Loaded()
	s.ProfileIdx = m.profiles.Index()
	s.ProfileList = m.profiles.List()
	return s
}

// Tick runs one loop iteration. dt is the wall time since the previous tick;
// the return value is how long to wait before the next one.
func (m *Machine) Tick(dt time.Duration) time.Duration {
	switch m.sess.State {
	case Standby:
		return m.tickStandby()
	case Active:
		return m.tickActive(dt)
	case Cycling:
		return m.tickCycling()
	default:
		return m.cfg.Period
	}
}

func (m *Machine) enter(s State) {
	m.sess.State = s
	log.Printf("saber: state=%s", s)
}

func (m *Machine) afterAction() time.Duration {
	return m.cfg.ButtonHoldoff + m.cfg.Period
}

func (m *Machine) tickStandby() time.Duration {
	c := m.sess.Profile.Color
	m.hw.Indicator.Fill(c)
	m.check(m.hw.Indicator.Show())
	m.check(m.blade.ShowBase(c))

	if m.hw.Power.Pressed() {
		return m.beginIgnite()
	}
	if m.hw.Aux.Pressed() {
		m.cycleProfile()
		return m.afterAction()
	}
	return m.cfg.Period
}

func (m *Machine) cycleProfile() {
	p, err := m.profiles.Next()
	if err != nil {
		log.Printf("saber: profile change failed, keeping %q: %v", m.sess.Profile.Name, err)
		return
	}
	m.sess.Profile = p
	if err := m.font.Load(p.FontPath); err != nil {
		log.Printf("saber: soundfont load failed, running silent: %v", err)
	}
}

func (m *Machine) tickActive(dt time.Duration) time.Duration {
	if m.hw.Power.Pressed() {
		return m.beginExtinguish()
	}

	pitch, yaw, err := m.hw.Gyro.AngularVelocity()
	if err != nil {
		m.check(err)
		return m.cfg.Period
	}
	p := m.sess.Profile
	st := m.filter.Update(pitch, yaw, dt, p.Motion())
	m.sess.Motion = st

	var lv audio.Levels
	if st.Swinging {
		lv = m.engine.Update(st.Accumulated, st.Strength, p.Transitions())
	} else {
		lv = m.engine.Quiesce()
	}
	m.sess.Levels = lv
	audio.Apply(m.hw.Audio, lv)
	return m.cfg.Period
}

func (m *Machine) tickCycling() time.Duration {
	a := &m.anim
	if a.frame < a.frames {
		m.runFrame()
		return m.cfg.FrameDelay
	}
	switch a.kind {
	case animIgnite:
		m.finishIgnite()
		return m.afterAction()
	case animExtinguish:
		if !a.holding && m.cfg.Hold > 0 {
			a.holding = true
			return m.cfg.Hold
		}
		m.finishExtinguish()
		return m.afterAction()
	default:
		m.enter(Standby)
		return m.cfg.Period
	}
}

func (m *Machine) runFrame() {
	a := &m.anim
	dev := m.hw.Audio
	switch a.kind {
	case animIgnite:
		m.check(m.blade.IgniteFrame(a.frame, m.sess.Profile.Color))
		m.sess.Levels.Hum = math.Min(m.cfg.HumCap, m.sess.Levels.Hum+m.cfg.IgniteStep)
		dev.Voice(audio.Hum).SetLevel(m.sess.Levels.Hum)
	case animExtinguish:
		m.check(m.blade.ExtinguishFrame(a.frame))
		m.sess.Effect = math.Min(m.cfg.HumCap, m.sess.Effect+m.cfg.ExtinguishStep)
		dev.Voice(audio.Effect).SetLevel(m.sess.Effect)
		m.sess.Levels.Hum = math.Max(0, m.sess.Levels.Hum-m.cfg.HumFadeStep)
		dev.Voice(audio.Hum).SetLevel(m.sess.Levels.Hum)
	}
	a.frame++
}

func (m *Machine) play(id audio.VoiceID, c audio.Clip, loop bool, level float64) {
	v := m.hw.Audio.Voice(id)
	if c != nil {
		v.Play(c, loop)
	}
	v.SetLevel(level)
}

func (m *Machine) clips() audio.Clips {
	if c := m.font.Clips(); c != nil {
		return *c
	}
	return audio.Clips{}
}

func (m *Machine) beginIgnite() time.Duration {
	m.enter(Cycling)
	m.anim = animation{kind: animIgnite, frames: m.blade.Frames()}

	clips := m.clips()
	m.check(m.hw.Audio.Play())
	m.sess.Levels = audio.Levels{}
	m.sess.Effect = 1.0
	m.play(audio.Hum, clips.Hum, true, m.sess.Levels.Hum)
	m.play(audio.Effect, clips.Ignite, false, m.sess.Effect)

	if m.anim.frames == 0 {
		m.finishIgnite()
		return m.afterAction()
	}
	m.runFrame()
	return m.cfg.FrameDelay
}

func (m *Machine) finishIgnite() {
	clips := m.clips()
	dev := m.hw.Audio

	m.engine.Quiesce()
	m.sess.Levels.SwingBus = 0
	m.sess.Levels.SwingHigh = 0
	m.sess.Levels.SwingLow = 0
	m.play(audio.Bus, dev.SwingBus(), true, m.sess.Levels.SwingBus)
	m.play(audio.SwingHigh, clips.SwingHigh, true, 0)
	m.play(audio.SwingLow, clips.SwingLow, true, 0)

	// Whatever the frames left behind, the ignited blade is fully lit.
	m.check(m.blade.FillAll(m.sess.Profile.Color))

	m.anim = animation{}
	m.enter(Active)
}

func (m *Machine) beginExtinguish() time.Duration {
	m.enter(Cycling)
	m.anim = animation{kind: animExtinguish, frames: m.blade.Frames()}

	clips := m.clips()
	dev := m.hw.Audio
	m.sess.Levels.SwingBus = 0
	dev.Voice(audio.Bus).SetLevel(0)

	m.sess.Effect = m.cfg.ExtinguishStart
	m.play(audio.Effect, clips.Extinguish, false, m.sess.Effect)

	if m.anim.frames == 0 {
		return m.tickCycling()
	}
	m.runFrame()
	return m.cfg.FrameDelay
}

func (m *Machine) finishExtinguish() {
	m.hw.Audio.Stop()
	m.sess.Levels = audio.Levels{}
	m.sess.Effect = 0
	m.sess.Motion = motion.State{}
	m.anim = animation{}
	m.enter(Standby)
}

// Shutdown silences audio and blanks both light sources.
func (m *Machine) Shutdown() {
	m.font.Close()
	m.hw.Audio.Stop()
	m.check(m.blade.FillAll(led.Off))
	m.hw.Indicator.Fill(led.Off)
	m.check(m.hw.Indicator.Show())
}

// check logs hardware errors without repeating the same message every tick.
func (m *Machine) check(err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != m.lastErr {
		log.Printf("saber: %v", err)
		m.lastErr = msg
	}
}
