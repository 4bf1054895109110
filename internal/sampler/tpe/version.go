package tpe

import "github.com/GoSim-25-26J-441/tpe-golden/internal/sampler"

const (
	// Name identifies this sampler in fixture metadata
	Name = "tpe"

	// Version is recorded as "<Name>_version" in generated fixtures
	Version = "1.0.0"
)

// Library describes the TPE sampler to the fixture harness
func Library() sampler.Library {
	return sampler.Library{Name: Name, Version: Version, NewStudy: NewStudy}
}
