package tsccal

import "fmt"

// Intel CPU families (CPUID display family).
const (
	FamilyPentiumM = 0x6 // Family 6, P6 lineage up to Core 2 and beyond.
	FamilyPentium4 = 0xF
)

// intelClass is the calibration class of an Intel part.
type intelClass int

const (
	classDefault  intelClass = iota // Nehalem and later: PLATFORM_INFO.
	classCore2                      // Merom, Penryn: IA32_PERF_STS.
	classPentiumM                   // Family 6 before Merom.
	classPentium4
)

// modelTbl maps <family>_<model> of family 6 parts to their class.
// Models missing here fall back to the model ranges in classifyIntel.
//
// key: <family>_<model>, both in hex as in "06_17H".
var modelTbl = map[string]intelClass{
	"06_0FH": classCore2, // Merom.
	"06_16H": classCore2, // Merom-L.
	"06_17H": classCore2, // Penryn.
	"06_1DH": classCore2, // Dunnington.
}

// Signature formats family and model like the keys of modelTbl.
func Signature(family, model int) string {
	return fmt.Sprintf("%02X_%02XH", family, model)
}

func classifyIntel(family, model int) intelClass {
	if c, ok := modelTbl[Signature(family, model)]; ok {
		return c
	}
	switch {
	case family == FamilyPentium4:
		return classPentium4
	case family == FamilyPentiumM && model < 0x0F:
		return classPentiumM
	}
	return classDefault
}
