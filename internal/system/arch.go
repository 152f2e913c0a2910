package system

import (
	"context"
	"runtime"
)

// DebianArchitecture maps a machine hardware name to a Debian architecture.
// Unknown machines default to amd64.
func DebianArchitecture(machine string) string {
	switch machine {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "aarch64"
	default:
		return "amd64"
	}
}

// HostArchitecture returns the Debian architecture of the host.
func HostArchitecture(ctx context.Context, host Host) (string, error) {
	machine, err := host.Machine(ctx)
	if err != nil {
		return "", err
	}
	return DebianArchitecture(machine), nil
}

// RuntimeHost derives the machine name from the architecture the binary was compiled for.
type RuntimeHost struct{}

func (h *RuntimeHost) Machine(ctx context.Context) (string, error) {
	return machineName(runtime.GOARCH), nil
}

// machineName converts a GOARCH value to the uname -m equivalent.
func machineName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7l"
	default:
		// ppc64le, s390x, riscv64 have the same name
		return goarch
	}
}
