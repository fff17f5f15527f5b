package datatypes

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a TOSCA version value:
// major.minor[.fix[.qualifier[-build]]].
type Version struct {
	Major     int
	Minor     int
	Fix       int
	Qualifier string
	Build     int
}

var versionRe = regexp.MustCompile(
	`^(\d+)\.(\d+)(?:\.(\d+)(?:\.([A-Za-z0-9]+)(?:-(\d+))?)?)?$`)

// ParseVersion parses a raw value as a version.
func ParseVersion(value any) (*Version, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v) + ".0"
	default:
		return nil, typeError(TypeVersion, value)
	}
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("malformed version %q", s)
	}
	ver := &Version{Qualifier: m[4]}
	ver.Major, _ = strconv.Atoi(m[1])
	ver.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		ver.Fix, _ = strconv.Atoi(m[3])
	}
	if m[5] != "" {
		ver.Build, _ = strconv.Atoi(m[5])
	}
	return ver, nil
}

// Compare orders versions numerically; qualifiers compare
// lexicographically, builds numerically.
func (v *Version) Compare(o *Version) int {
	for _, d := range []int{
		v.Major - o.Major, v.Minor - o.Minor, v.Fix - o.Fix,
	} {
		if d != 0 {
			return d
		}
	}
	switch {
	case v.Qualifier < o.Qualifier:
		return -1
	case v.Qualifier > o.Qualifier:
		return 1
	}
	return v.Build - o.Build
}

func (v *Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Fix)
	if v.Qualifier != "" {
		s += "." + v.Qualifier
		if v.Build != 0 {
			s += "-" + strconv.Itoa(v.Build)
		}
	}
	return s
}
