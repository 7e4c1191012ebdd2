package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"saberd/internal/sensors/lsm6dsox"
)

type Config struct {
	ProfilesPath string          `yaml:"profiles_path"`
	SoundsDir    string          `yaml:"sounds_dir"`
	Loop         LoopConfig      `yaml:"loop"`
	Audio        AudioConfig     `yaml:"audio"`
	Blade        BladeConfig     `yaml:"blade"`
	Indicator    IndicatorConfig `yaml:"indicator"`
	IMU          IMUConfig       `yaml:"imu"`
	Buttons      ButtonsConfig   `yaml:"buttons"`
}

type LoopConfig struct {
	Period        time.Duration  `yaml:"period"`
	ButtonHoldoff *time.Duration `yaml:"button_holdoff"`
}

type AudioConfig struct {
	Enable     *bool          `yaml:"enable"`
	SampleRate int            `yaml:"sample_rate"`
	BufferSize int            `yaml:"buffer_size"`
	HumCap     float64        `yaml:"hum_cap"`
	HumFloor   *float64       `yaml:"hum_floor"`
	Settle     *time.Duration `yaml:"settle"`
}

type BladeConfig struct {
	Pixels          int            `yaml:"pixels"`
	SPIPort         string         `yaml:"spi_port"`
	FrameDelay      time.Duration  `yaml:"frame_delay"`
	Hold            *time.Duration `yaml:"hold"`
	IgniteStep      float64        `yaml:"ignite_step"`
	ExtinguishStart *float64       `yaml:"extinguish_start"`
	ExtinguishStep  float64        `yaml:"extinguish_step"`
	HumFadeStep     float64        `yaml:"hum_fade_step"`
}

// IndicatorConfig drives the single status pixel. An empty port leaves it
// disabled.
type IndicatorConfig struct {
	SPIPort string `yaml:"spi_port"`
}

type IMUConfig struct {
	Enable *bool  `yaml:"enable"`
	I2CBus int    `yaml:"i2c_bus"`
	Addr   uint16 `yaml:"addr"`
}

type ButtonsConfig struct {
	Enable    *bool `yaml:"enable"`
	PowerGPIO *int  `yaml:"power_gpio"`
	AuxGPIO   *int  `yaml:"aux_gpio"`
}

func boolPtr(v bool) *bool                  { return &v }
func intPtr(v int) *int                     { return &v }
func floatPtr(v float64) *float64           { return &v }
func durPtr(v time.Duration) *time.Duration { return &v }

// On reports an optional switch, treating unset as on.
func On(b *bool) bool { return b == nil || *b }

// Float and Duration read optional values; unset reads as zero. An explicit
// zero survives DefaultAndValidate.
func Float(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func Duration(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills unset values and rejects inconsistent ones.
func DefaultAndValidate(cfg *Config) error {
	if cfg.ProfilesPath == "" {
		return fmt.Errorf("profiles_path is required")
	}
	if cfg.SoundsDir == "" {
		cfg.SoundsDir = "/sd/sounds"
	}

	if cfg.Loop.Period == 0 {
		cfg.Loop.Period = 42 * time.Millisecond
	}
	if cfg.Loop.Period < 0 {
		return fmt.Errorf("loop.period must be > 0")
	}
	if cfg.Loop.ButtonHoldoff == nil {
		cfg.Loop.ButtonHoldoff = durPtr(100 * time.Millisecond)
	}
	if *cfg.Loop.ButtonHoldoff < 0 {
		return fmt.Errorf("loop.button_holdoff must be >= 0")
	}

	if cfg.Audio.Enable == nil {
		cfg.Audio.Enable = boolPtr(true)
	}
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = 22050
	}
	if cfg.Audio.BufferSize == 0 {
		cfg.Audio.BufferSize = 2048
	}
	if cfg.Audio.SampleRate < 0 || cfg.Audio.BufferSize < 0 {
		return fmt.Errorf("audio.sample_rate and audio.buffer_size must be > 0")
	}
	if cfg.Audio.HumCap == 0 {
		cfg.Audio.HumCap = 0.9
	}
	if cfg.Audio.HumFloor == nil {
		cfg.Audio.HumFloor = floatPtr(0.25)
	}
	if cfg.Audio.HumCap < 0 || cfg.Audio.HumCap > 1 {
		return fmt.Errorf("audio.hum_cap must be within [0,1]")
	}
	if *cfg.Audio.HumFloor < 0 || *cfg.Audio.HumFloor > 1 {
		return fmt.Errorf("audio.hum_floor must be within [0,1]")
	}
	if cfg.Audio.Settle == nil {
		cfg.Audio.Settle = durPtr(420 * time.Millisecond)
	}
	if *cfg.Audio.Settle < 0 {
		return fmt.Errorf("audio.settle must be >= 0")
	}

	if cfg.Blade.Pixels == 0 {
		cfg.Blade.Pixels = 54
	}
	if cfg.Blade.Pixels < 0 {
		return fmt.Errorf("blade.pixels must be > 0")
	}
	if cfg.Blade.FrameDelay == 0 {
		cfg.Blade.FrameDelay = 10 * time.Millisecond
	}
	if cfg.Blade.Hold == nil {
		cfg.Blade.Hold = durPtr(time.Second)
	}
	if cfg.Blade.FrameDelay < 0 || *cfg.Blade.Hold < 0 {
		return fmt.Errorf("blade.frame_delay and blade.hold must be >= 0")
	}
	if cfg.Blade.IgniteStep == 0 {
		cfg.Blade.IgniteStep = 0.042
	}
	if cfg.Blade.ExtinguishStart == nil {
		cfg.Blade.ExtinguishStart = floatPtr(0.2)
	}
	if *cfg.Blade.ExtinguishStart < 0 || *cfg.Blade.ExtinguishStart > 1 {
		return fmt.Errorf("blade.extinguish_start must be within [0,1]")
	}
	if cfg.Blade.ExtinguishStep == 0 {
		cfg.Blade.ExtinguishStep = 0.021
	}
	if cfg.Blade.HumFadeStep == 0 {
		cfg.Blade.HumFadeStep = 0.022
	}
	if cfg.Blade.IgniteStep < 0 || cfg.Blade.ExtinguishStep < 0 || cfg.Blade.HumFadeStep < 0 {
		return fmt.Errorf("blade ramp steps must be > 0")
	}

	if cfg.IMU.Enable == nil {
		cfg.IMU.Enable = boolPtr(true)
	}
	if cfg.IMU.I2CBus == 0 {
		cfg.IMU.I2CBus = 1
	}
	if cfg.IMU.Addr == 0 {
		cfg.IMU.Addr = lsm6dsox.DefaultAddress()
	}
	if cfg.IMU.Addr > 0x7F {
		return fmt.Errorf("imu.addr must be a 7-bit address")
	}

	if cfg.Indicator.SPIPort != "" && cfg.Indicator.SPIPort == cfg.Blade.SPIPort {
		return fmt.Errorf("indicator.spi_port must differ from blade.spi_port")
	}

	if cfg.Buttons.Enable == nil {
		cfg.Buttons.Enable = boolPtr(true)
	}
	if cfg.Buttons.PowerGPIO == nil {
		cfg.Buttons.PowerGPIO = intPtr(2)
	}
	if cfg.Buttons.AuxGPIO == nil {
		cfg.Buttons.AuxGPIO = intPtr(3)
	}
	if On(cfg.Buttons.Enable) && *cfg.Buttons.PowerGPIO == *cfg.Buttons.AuxGPIO {
		return fmt.Errorf("buttons.power_gpio and buttons.aux_gpio must differ")
	}
	return nil
}
