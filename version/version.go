package version

// set via -ldflags at release build time
var (
	Version = "v0.1.0-dev"
	Commit  = "000000000000000000000000000000000badf00d"
	Date    = "1970-01-01T00:00:01Z"
)

// ShortCommit returns a short commit hash.
func ShortCommit() string {
	return Commit[:6]
}
