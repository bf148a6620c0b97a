// Package version provides application version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/pdc-decklist/internal/version.Version=v1.2.3"
package version

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// UserAgent returns the client header sent to the card-data service.
func UserAgent() string {
	if Version == "dev" {
		return "PDC-Decklist/1.0"
	}
	return "PDC-Decklist/" + Version
}
