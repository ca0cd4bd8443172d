// Package version carries build metadata injected at link time.
package version

var (
	Version = "dev"
	Commit  = "none"
)

func String() string {
	return Version + " (" + Commit + ")"
}
