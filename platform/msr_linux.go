//go:build linux

package platform

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// MSRFile reads MSRs through the Linux msr driver: the register at
// address a is the 8 bytes at offset a of /dev/cpu/N/msr.
type MSRFile struct {
	fd   int
	path string
}

// OpenMSR opens the msr device read-only.
func OpenMSR(path string) (*MSRFile, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoMSRDevice)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &MSRFile{fd: fd, path: path}, nil
}

// Read returns the register at addr.
func (m *MSRFile) Read(addr uint32) (uint64, error) {
	var buf [8]byte
	n, err := unix.Pread(m.fd, buf[:], int64(addr))
	if err != nil {
		return 0, fmt.Errorf("failed to read MSR 0x%x from %s: %w", addr, m.path, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("short read of MSR 0x%x from %s: %d bytes", addr, m.path, n)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadMSR implements tsccal.Registers, unreadable registers read as 0.
// A nil MSRFile reads every register as 0.
func (m *MSRFile) ReadMSR(addr uint32) uint64 {
	if m == nil {
		return 0
	}
	v, err := m.Read(addr)
	if err != nil {
		glog.Warningf("msr: %v", err)
		return 0
	}
	return v
}

// Close closes the device.
func (m *MSRFile) Close() error {
	return unix.Close(m.fd)
}
