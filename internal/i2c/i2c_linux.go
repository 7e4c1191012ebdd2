//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The IMU is polled once per control tick. Each register access is a single
// I2C_RDWR ioctl; reads send the register pointer and the data phase with a
// repeated start in between.

const (
	ioctlRdwr = 0x0707
	flagRead  = 0x0001
	maxAddr   = 0x7F
)

// i2c_msg and i2c_rdwr_ioctl_data from linux/i2c-dev.h.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type rdwrIoctlData struct {
	msgs  uintptr
	nmsgs uint32
}

var errClosed = errors.New("i2c: bus closed")

// Bus is an opened adapter. Transfers are not serialized; the control loop is
// the only user.
type Bus struct {
	f    *os.File
	path string
}

// OpenNumber opens /dev/i2c-<n>.
func OpenNumber(n int) (*Bus, error) {
	return Open(fmt.Sprintf("/dev/i2c-%d", n))
}

func Open(path string) (*Bus, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	return &Bus{f: f, path: path}, nil
}

// Path is the adapter node, e.g. /dev/i2c-1.
func (b *Bus) Path() string {
	if b == nil {
		return ""
	}
	return b.path
}

func (b *Bus) Close() error {
	if b == nil || b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

// Dev returns a handle for the peripheral at a 7-bit address.
func (b *Bus) Dev(addr uint16) (*Dev, error) {
	if b == nil {
		return nil, errClosed
	}
	if addr == 0 || addr > maxAddr {
		return nil, fmt.Errorf("i2c: invalid addr 0x%X", addr)
	}
	return &Dev{bus: b, addr: addr}, nil
}

type Dev struct {
	bus  *Bus
	addr uint16
}

// ReadReg fills dst starting at reg. Sensors with auto-increment return
// consecutive registers.
func (d *Dev) ReadReg(reg byte, dst []byte) error {
	return d.transfer(msg(d.addr, 0, []byte{reg}), msg(d.addr, flagRead, dst))
}

func (d *Dev) ReadRegU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Dev) WriteReg(reg, value byte) error {
	return d.transfer(msg(d.addr, 0, []byte{reg, value}))
}

// msg describes one segment; an empty buffer yields a zero message that
// transfer drops.
func msg(addr, flags uint16, p []byte) i2cMsg {
	if len(p) == 0 {
		return i2cMsg{}
	}
	return i2cMsg{addr: addr, flags: flags, len: uint16(len(p)), buf: uintptr(unsafe.Pointer(&p[0]))}
}

func (d *Dev) transfer(segs ...i2cMsg) error {
	if d == nil || d.bus == nil || d.bus.f == nil {
		return errClosed
	}
	var msgs [2]i2cMsg
	n := 0
	for _, m := range segs {
		if m.len == 0 {
			continue
		}
		if n == len(msgs) {
			return errors.New("i2c: too many segments")
		}
		msgs[n] = m
		n++
	}
	if n == 0 {
		return nil
	}

	data := rdwrIoctlData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(n)}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), uintptr(ioctlRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return fmt.Errorf("i2c: %s addr 0x%02X: %w", d.bus.path, d.addr, errno)
	}
	return nil
}
