// Package version reports the build version and compares semantic versions.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize adds the "v" prefix semver expects: "1.2.3" -> "v1.2.3".
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// HasNewerVersion reports whether latest is newer than current. Development
// builds and unparsable current versions always report an update.
func HasNewerVersion(current, latest string) bool {
	if latest == "" {
		return false
	}
	if current == "" || current == "dev" {
		return true
	}

	cur := Normalize(current)
	lat := Normalize(latest)
	if !semver.IsValid(cur) {
		return true
	}
	if !semver.IsValid(lat) {
		return false
	}
	return semver.Compare(cur, lat) < 0
}

// Compatible reports whether a kiosk built as client can talk to a server
// reporting server. Versions agree when their major versions match; dev
// builds on either side are always accepted.
func Compatible(client, server string) bool {
	if client == "" || client == "dev" || server == "" || server == "dev" {
		return true
	}
	c := Normalize(client)
	s := Normalize(server)
	if !semver.IsValid(c) || !semver.IsValid(s) {
		return false
	}
	return semver.Major(c) == semver.Major(s)
}
