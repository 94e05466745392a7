// Package utils provides helper functions shared by the mdtree packages.
package utils

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	gitExecutableName  = "git"
	gitDescribeCommand = "describe"
)

// GetApplicationVersion reports the module version from build info, falling back to
// `git describe` when the binary was built from a working tree.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}

	// #nosec G204
	describeCommand := exec.Command(gitExecutableName, gitDescribeCommand, "--tags", "--always", "--dirty")
	describeOutput, describeError := describeCommand.Output()
	if describeError == nil && len(describeOutput) > 0 {
		return strings.TrimSpace(string(describeOutput))
	}

	return unknownVersion
}
