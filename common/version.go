package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

const (
	major = 0
	minor = 1
	patch = 0

	// Version is the current version of the contracts in the form of
	// major*1_000_000 + minor*1_000 + patch.
	Version = major*1_000_000 + minor*1_000 + patch

	// ErrVersionMismatch is thrown by CheckVersion on attempt to update
	// contract to an older version.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion if current version equals to version contract
	// is being updated from.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion checks that contract is being updated from an older version
// than Version.
func CheckVersion(from int) {
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
	if from > Version {
		panic(ErrVersionMismatch + ": expected <" + std.Itoa(Version, 10))
	}
}

// AppendVersion appends current contract version to the list of deploy arguments.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
