package network

// NationalRailType is the operator type shared by the national-rail group.
// Lines of two such operators are mutually transferable.
const NationalRailType = "JR"

// IsCompatible reports whether a passenger may transfer between lines operated
// under a and b: same real operator, or both in the national-rail group.
func IsCompatible(a, b LineMeta) bool {
	if a.Company == b.Company && !IsPlaceholderCompany(a.Company) {
		return true
	}
	return a.Type == NationalRailType && b.Type == NationalRailType
}

// IsPlaceholderCompany reports whether name stands in for a missing operator.
func IsPlaceholderCompany(name string) bool {
	switch name {
	case "", UnattributedCompany, UnknownValue:
		return true
	}
	return false
}
