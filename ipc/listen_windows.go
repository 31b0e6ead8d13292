//go:build windows

package ipc

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// Listen opens the named channel for clients. Message mode matches what
// the legacy clients negotiate; the frame headers keep either side honest
// on a byte stream too.
func Listen(pipeName string) (net.Listener, error) {
	listener, err := winio.ListenPipe(pipeName, &winio.PipeConfig{
		MessageMode:      true,
		InputBufferSize:  65536,
		OutputBufferSize: 65536,
	})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", pipeName, err)
	}
	return listener, nil
}
