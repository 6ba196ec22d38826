package platform

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/templexxx/tsccal/internal/xbytes"
)

// DirFirmware reads firmware properties laid out as files:
// property name under path is the file <Root>/<path>/<name>,
// holding the raw value bytes (as /proc/device-tree does).
type DirFirmware struct {
	Root      string
	BigEndian bool
}

// Property implements tsccal.Firmware.
func (f DirFirmware) Property(path, name string) ([]byte, bool) {
	file := filepath.Join(f.Root, filepath.FromSlash(path), name)
	b, err := os.ReadFile(file)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.Warningf("firmware: failed to read %s: %v", file, err)
		}
		return nil, false
	}
	if f.BigEndian {
		b = xbytes.Swap64(b)
	}
	return b, true
}
