// Package platform provides the host side of the calibration sources:
// firmware properties from a device tree directory, boot arguments from
// the kernel command line, MSRs through the msr driver and the CPU
// identity from CPUID.
package platform

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "TSCCAL"

// Config locates the host sources. Every field can be overridden with
// TSCCAL_<FIELD>, e.g. TSCCAL_FIRMWARE_ROOT.
type Config struct {
	// FirmwareRoot is where firmware property paths are resolved,
	// "/efi/platform" is read from <FirmwareRoot>/efi/platform.
	FirmwareRoot string `split_words:"true" default:"/proc/device-tree"`
	// BigEndianProperties is set for flattened device trees, EFI
	// publishes little-endian values.
	BigEndianProperties bool `split_words:"true" default:"false"`

	// Cmdline is the kernel command line file.
	Cmdline string `default:"/proc/cmdline"`
	// BootArgs are appended to the command line, e.g. "busratio=125".
	BootArgs string `split_words:"true"`

	// MSRDevice is the msr driver node of the calibrating CPU.
	MSRDevice string `split_words:"true" default:"/dev/cpu/0/msr"`

	// VMMBusKHz is the bus frequency reported together with the
	// hypervisor TSC frequency, 0 disables the hypervisor short-circuit.
	VMMBusKHz uint32 `envconfig:"VMM_BUS_KHZ" default:"0"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var c Config
	err := envconfig.Process(EnvPrefix, &c)
	return c, err
}
