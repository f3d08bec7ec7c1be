package version

// Populated at link time via -ldflags.
var (
	Version = "0.1.0"
	Commit  = ""
)

// String returns the release version, with the build commit appended when
// one was stamped in.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + "+" + Commit
}
