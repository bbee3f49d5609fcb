package enums

import "fmt"

// AssetStatus tracks the lifecycle of a physical asset.
type AssetStatus string

const (
	AssetStatusNotAvailable        AssetStatus = "not_available"
	AssetStatusAvailable           AssetStatus = "available"
	AssetStatusAssigned            AssetStatus = "assigned"
	AssetStatusWaitingForRecycling AssetStatus = "waiting_for_recycling"
	AssetStatusRecycled            AssetStatus = "recycled"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusNotAvailable,
	AssetStatusAvailable,
	AssetStatusAssigned,
	AssetStatusWaitingForRecycling,
	AssetStatusRecycled,
}

// String implements fmt.Stringer.
func (s AssetStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssetStatus.
func (s AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssetStatus converts raw input into an AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}
