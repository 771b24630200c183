//go:build linux

package peercred

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsCallingProcessCredentials(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "peercred-test.sock")

	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: socketPath, Net: "unix"})
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *net.UnixConn, 1)
	go func() {
		conn, err := ln.AcceptUnix()
		if err == nil {
			accepted <- conn
		}
	}()

	client, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: socketPath, Net: "unix"})
	require.NoError(t, err)
	defer client.Close()

	server := <-accepted
	defer server.Close()

	creds, err := Get(server)
	require.NoError(t, err)
	assert.Equal(t, uint32(os.Getuid()), creds.UID)
	assert.Equal(t, uint32(os.Getgid()), creds.GID)
}
