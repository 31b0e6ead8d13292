//go:build windows

package main

import (
	"fmt"
	"strings"

	gops "github.com/shirou/gopsutil/v3/process"
)

// resolvePID picks the target from --pid or --name. Name matches are
// case-insensitive against the executable name; the lowest PID wins for
// determinism.
func resolvePID(pid int, name string) (int, error) {
	if pid > 0 {
		return pid, nil
	}
	if name == "" {
		return 0, fmt.Errorf("--pid or --name is required")
	}

	procs, err := gops.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	best := 0
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(pname, name) {
			if best == 0 || int(p.Pid) < best {
				best = int(p.Pid)
			}
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("no process named %q", name)
	}
	return best, nil
}
