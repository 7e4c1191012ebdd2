package lsm6dsox

import (
	"fmt"
	"math"
	"time"

	"saberd/internal/i2c"
)

var sleep = time.Sleep

// Minimal LSM6DSOX driver: probe, reset, fixed ranges, burst read of the
// gyro+accel output block.
//
// Ranges match the hilt tuning: accel 2 g, gyro 2000 dps, both at 26 Hz.
// Swing thresholds in the profile document are expressed in rad/s, so the
// gyro is reported in rad/s.

const (
	addrDefault = 0x6A

	regWhoAmI = 0x0F
	whoAmIVal = 0x6C

	regCtrl1XL = 0x10
	regCtrl2G  = 0x11
	regCtrl3C  = 0x12

	bitSWReset = 0x01
	bitIFInc   = 0x04
	bitBDU     = 0x40

	regOutXLG = 0x22 // gyro x,y,z then accel x,y,z, little-endian

	odr26Hz     = 0x2 << 4
	fsXL2g      = 0x0 << 2
	fsG2000dps  = 0x3 << 2
	accelLSBmg  = 0.061
	gyroLSBmdps = 70.0
)

type Sample struct {
	Time time.Time
	// Accel in g.
	Ax, Ay, Az float64
	// Gyro in rad/s.
	Gx, Gy, Gz float64
}

type Device struct {
	dev regIO

	scaleAccel float64
	scaleGyro  float64
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

// DefaultAddress is the SA0-low address the daemon uses when imu.addr is
// unset.
func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("lsm6dsox: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("lsm6dsox: dev is nil")
	}
	d := &Device{dev: dev}

	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("lsm6dsox: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return nil, fmt.Errorf("lsm6dsox: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	if err := d.dev.WriteReg(regCtrl3C, bitSWReset); err != nil {
		return fmt.Errorf("lsm6dsox: reset failed: %w", err)
	}
	sleep(10 * time.Millisecond)

	// Block data update keeps the low/high bytes of one axis from straddling
	// two conversions; auto-increment makes the 12 byte burst read work.
	if err := d.dev.WriteReg(regCtrl3C, bitBDU|bitIFInc); err != nil {
		return fmt.Errorf("lsm6dsox: ctrl3 failed: %w", err)
	}
	if err := d.dev.WriteReg(regCtrl1XL, odr26Hz|fsXL2g); err != nil {
		return fmt.Errorf("lsm6dsox: accel config failed: %w", err)
	}
	if err := d.dev.WriteReg(regCtrl2G, odr26Hz|fsG2000dps); err != nil {
		return fmt.Errorf("lsm6dsox: gyro config failed: %w", err)
	}

	d.scaleAccel = accelLSBmg / 1000.0
	d.scaleGyro = gyroLSBmdps / 1000.0 * math.Pi / 180.0
	return nil
}

func (d *Device) Read() (Sample, error) {
	if d == nil {
		return Sample{}, fmt.Errorf("lsm6dsox: device is nil")
	}
	var buf [12]byte
	if err := d.dev.ReadReg(regOutXLG, buf[:]); err != nil {
		return Sample{}, fmt.Errorf("lsm6dsox: read sensors failed: %w", err)
	}

	word := func(i int) float64 { return float64(int16(uint16(buf[i]) | uint16(buf[i+1])<<8)) }

	return Sample{
		Time: time.Now(),
		Gx:   word(0) * d.scaleGyro,
		Gy:   word(2) * d.scaleGyro,
		Gz:   word(4) * d.scaleGyro,
		Ax:   word(6) * d.scaleAccel,
		Ay:   word(8) * d.scaleAccel,
		Az:   word(10) * d.scaleAccel,
	}, nil
}

// AngularVelocity returns the two rotation axes that describe a swing. The x
// axis runs down the blade and is left out.
func (d *Device) AngularVelocity() (pitch, yaw float64, err error) {
	s, err := d.Read()
	if err != nil {
		return 0, 0, err
	}
	return s.Gy, s.Gz, nil
}
