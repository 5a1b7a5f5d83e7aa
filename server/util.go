package server

import (
	"fmt"
	"net"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/errors"
)

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port int) bool {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = listener.Close() // Error ignored: best-effort port check, caller will retry on actual bind
	return true
}

// findAvailablePort tries the requested port, then the standard and
// fallback ports, then a small high range as a last resort.
func findAvailablePort(requestedPort int) (int, error) {
	if isPortAvailable(requestedPort) {
		return requestedPort, nil
	}

	preferredPorts := []int{am.DefaultServerPort, am.FallbackServerPort}
	for _, port := range preferredPorts {
		if port != requestedPort && isPortAvailable(port) {
			return port, nil
		}
	}

	fallbackStart := 5060
	for i := 0; i < 10; i++ {
		port := fallbackStart + i
		if isPortAvailable(port) {
			return port, nil
		}
	}

	return 0, errors.Newf("no available ports found (tried %d, %d, %d, and range 5060-5069)", requestedPort, am.DefaultServerPort, am.FallbackServerPort)
}
