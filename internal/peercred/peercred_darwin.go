//go:build darwin

package peercred

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Credentials holds the numeric identity of a connected peer.
type Credentials struct {
	UID uint32
	GID uint32
}

// Get reads the peer credentials of a connected UNIX socket via
// LOCAL_PEERCRED, the BSD/Darwin analogue of Linux's SO_PEERCRED.
func Get(conn *net.UnixConn) (Credentials, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return Credentials{}, fmt.Errorf("peercred: SyscallConn: %w", err)
	}
	var xucred *unix.Xucred
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		xucred, sockErr = unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
	})
	if ctrlErr != nil {
		return Credentials{}, fmt.Errorf("peercred: Control: %w", ctrlErr)
	}
	if sockErr != nil {
		return Credentials{}, fmt.Errorf("peercred: GetsockoptXucred: %w", sockErr)
	}
	gid := uint32(0)
	if xucred.Ngroups > 0 {
		gid = xucred.Groups[0]
	}
	return Credentials{UID: xucred.Uid, GID: gid}, nil
}
