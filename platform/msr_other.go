//go:build !linux

package platform

// MSRFile is unavailable outside Linux.
type MSRFile struct{}

// OpenMSR always fails outside Linux.
func OpenMSR(path string) (*MSRFile, error) {
	return nil, ErrNoMSRDevice
}

// Read always fails outside Linux.
func (m *MSRFile) Read(addr uint32) (uint64, error) {
	return 0, ErrNoMSRDevice
}

// ReadMSR reads every register as 0.
func (m *MSRFile) ReadMSR(addr uint32) uint64 {
	return 0
}

// Close is a no-op.
func (m *MSRFile) Close() error {
	return nil
}
