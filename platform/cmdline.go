package platform

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"
)

// Cmdline holds integer boot arguments.
// "name=value" arguments keep their value, bare words are flags with
// value 1. Values that aren't integers are dropped.
type Cmdline map[string]int64

// ParseCmdline splits a kernel command line, honoring shell quoting.
func ParseCmdline(s string) (Cmdline, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("failed to split command line: %w", err)
	}

	c := make(Cmdline, len(words))
	for _, w := range words {
		name, value, ok := strings.Cut(w, "=")
		if !ok {
			c[name] = 1
			continue
		}
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			glog.V(1).Infof("cmdline: ignoring non integer argument %s", w)
			continue
		}
		c[name] = v
	}
	return c, nil
}

// ReadCmdline parses the command line file plus extra arguments.
// A missing file leaves only the extra arguments.
func ReadCmdline(path, extra string) (Cmdline, error) {
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseCmdline(strings.TrimSpace(string(b)) + " " + extra)
}

// Int implements tsccal.BootArgs.
func (c Cmdline) Int(name string) (int64, bool) {
	v, ok := c[name]
	return v, ok
}
