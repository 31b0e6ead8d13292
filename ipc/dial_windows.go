//go:build windows

package ipc

import (
	"fmt"
	"time"

	"github.com/Microsoft/go-winio"
)

const (
	connectAttempts   = 5
	connectWaitPerTry = 2 * time.Second
	connectRetryDelay = 500 * time.Millisecond
)

// Connect dials the named channel. Up to five attempts are made; a busy
// pipe is waited on for up to two seconds per attempt.
func (c *Client) Connect() error {
	if c.closed.Load() {
		return ErrNotConnected
	}
	if c.connected.Load() {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		timeout := connectWaitPerTry
		conn, err := winio.DialPipe(c.pipeName, &timeout)
		if err == nil {
			c.Attach(conn)
			c.log.Infoln("Connected to", c.pipeName)
			return nil
		}
		lastErr = err
		time.Sleep(connectRetryDelay)
	}

	return fmt.Errorf("dial %s: %v: %w", c.pipeName, lastErr, ErrNotConnected)
}
