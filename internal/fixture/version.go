package fixture

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

// VersionError reports a fixture produced by an incompatible sampler
type VersionError struct {
	Want   string
	Got    string
	Reason string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("fixture was generated by %s, running %s: %s", e.Got, e.Want, e.Reason)
}

func parseVersion(v string) (*semver.Version, error) {
	if v == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}
	out, err := semver.StrictNewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version %q: %w", v, err)
	}
	return out, nil
}

// CheckVersion accepts a fixture only when it names the same library and
// its version shares major and minor with the running one.
func CheckVersion(meta models.Meta, library, version string) error {
	verr := &VersionError{
		Want: library + " " + version,
		Got:  meta.Library + " " + meta.Version,
	}
	if meta.Library != library {
		verr.Reason = "different library"
		return verr
	}

	running, err := parseVersion(version)
	if err != nil {
		return err
	}
	recorded, err := parseVersion(meta.Version)
	if err != nil {
		verr.Reason = err.Error()
		return verr
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", running.Major(), running.Minor()))
	if err != nil {
		return fmt.Errorf("build version constraint: %w", err)
	}
	if !constraint.Check(recorded) {
		verr.Reason = fmt.Sprintf("%s is not compatible with ~%d.%d", recorded, running.Major(), running.Minor())
		return verr
	}
	return nil
}
