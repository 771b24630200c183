//go:build linux

// Package peercred captures a UNIX socket peer's uid/gid once at accept
// time, replacing libc's getpeereid() used by the reference daemon.
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
// SO_PEERCRED. It must be called once, right after accept: the peer's
// uid/gid are captured at connection time and never refreshed for the
// life of the session, even if the peer process's credentials later
// change.
func Get(conn *net.UnixConn) (Credentials, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return Credentials{}, fmt.Errorf("peercred: SyscallConn: %w", err)
	}
	var ucred *unix.Ucred
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		ucred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctrlErr != nil {
		return Credentials{}, fmt.Errorf("peercred: Control: %w", ctrlErr)
	}
	if sockErr != nil {
		return Credentials{}, fmt.Errorf("peercred: GetsockoptUcred: %w", sockErr)
	}
	return Credentials{UID: ucred.Uid, GID: ucred.Gid}, nil
}
