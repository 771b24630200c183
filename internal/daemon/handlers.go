package daemon

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/System233/poudriered/internal/config"
	"github.com/System233/poudriered/internal/hooks"
	"github.com/System233/poudriered/internal/peercred"
	"github.com/System233/poudriered/internal/policy"
	"github.com/System233/poudriered/internal/router"
	"github.com/System233/poudriered/internal/runner"
	"github.com/System233/poudriered/internal/wire"
)

// handleConn services one client connection: capture its peer identity
// once, then read and dispatch frames until the peer disconnects.
func (d *Daemon) handleConn(conn *net.UnixConn) {
	defer conn.Close()

	creds, err := peercred.Get(conn)
	if err != nil {
		d.log.Warnf("peercred: %v", err)
		return
	}
	cl := policy.Client{UID: creds.UID, GID: creds.GID}

	session := uuid.NewString()
	d.log.Debugf("session %s: accepted, uid=%d gid=%d", session, cl.UID, cl.GID)
	defer d.log.Debugf("session %s: closed", session)

	var acc wire.Accumulator
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			acc.Feed(buf[:n])
			for {
				frame, ok, takeErr := acc.Take()
				if takeErr != nil {
					d.log.Warnf("malformed frame: %v", takeErr)
					return
				}
				if !ok {
					break
				}
				if body, err := wire.Emit(frame); err == nil {
					d.log.Debugf("session %s: request %s", session, body)
				}
				if reply, hasReply := d.handleRequest(cl, frame); hasReply {
					if werr := wire.WriteFrame(conn, reply); werr != nil {
						d.log.Warnf("writing reply: %v", werr)
						return
					}
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.log.Debugf("connection closed: %v", err)
			}
			return
		}
	}
}

// handleRequest runs the Request Router against one parsed frame and
// carries out its Decision. Operation handlers and the enqueue path hold
// the daemon's mutex for the duration of the stateful part of the work,
// matching the single-threaded discipline of the original daemon's event
// loop.
func (d *Daemon) handleRequest(cl policy.Client, req wire.Node) (wire.Node, bool) {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	pol := d.currentConfig().Policy
	decision := router.Route(pol, cl, req)

	switch decision.Kind {
	case router.KindError:
		d.metric.requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return errorReply(decision.ErrorMessage), true

	case router.KindEnqueue:
		d.queue.Append(decision.Entry)
		d.log.Infof("new command queued")
		d.metric.queueDepth.Set(float64(d.queue.Len()))
		d.processQueueLocked()
		d.metric.requestDuration.WithLabelValues("enqueued").Observe(time.Since(start).Seconds())
		return wire.Null(), false

	case router.KindOperation:
		reply := d.dispatchOperationLocked(decision.OperationName)
		d.metric.requestDuration.WithLabelValues(decision.OperationName).Observe(time.Since(start).Seconds())
		return reply, true
	}

	return errorReply("internal error"), true
}

// dispatchOperationLocked executes one of the internal administrative
// verbs this daemon exposes. Callers must already hold d.mu.
func (d *Daemon) dispatchOperationLocked(name string) wire.Node {
	switch name {
	case "quit":
		go d.Shutdown()
		return wire.Object(map[string]wire.Node{"quit": wire.Bool(true)})

	case "reload":
		ok := d.reloadLocked()
		return wire.Object(map[string]wire.Node{"reload": wire.Bool(ok)})

	case "queue":
		entries := d.queue.Snapshot()
		nodes := make([]wire.Node, 0, len(entries))
		for _, e := range entries {
			nodes = append(nodes, e.Data)
		}
		return wire.Object(map[string]wire.Node{"queue": wire.Array(nodes...)})

	case "status":
		state := wire.String("idle")
		data := wire.Object(map[string]wire.Node{})
		if d.running != nil {
			state = wire.String("running")
			data = d.running.Entry.Data
		}
		return wire.Object(map[string]wire.Node{
			"state": state,
			"data":  data,
		})

	case "jail":
		if d.jails == nil {
			return wire.Object(map[string]wire.Node{"jail": hooks.JailNode(nil)})
		}
		jails, err := d.jails()
		if err != nil {
			return errorReply(err.Error())
		}
		return wire.Object(map[string]wire.Node{"jail": hooks.JailNode(jails)})

	case "ports":
		if d.ports == nil {
			return wire.Object(map[string]wire.Node{"ports": hooks.PortsNode(nil)})
		}
		ports, err := d.ports()
		if err != nil {
			return errorReply(err.Error())
		}
		return wire.Object(map[string]wire.Node{"ports": hooks.PortsNode(ports)})
	}

	return errorReply("unknown operation")
}

// reloadLocked re-parses configPath and swaps the Cache on success. It is
// the locked counterpart of Reload, used when `reload` arrives over the
// socket rather than via a HUP signal.
func (d *Daemon) reloadLocked() bool {
	next, err := config.Load(d.configPath)
	if err != nil {
		d.log.Warnf("reload: %v", err)
		return false
	}
	d.cache.Swap(next)
	return true
}

// processQueueLocked starts the next queued entry if the runner slot is
// idle, enforcing at-most-one-running FIFO execution. Callers must
// already hold d.mu.
func (d *Daemon) processQueueLocked() {
	if d.running != nil {
		return
	}
	entry, ok := d.queue.PopFront()
	if !ok {
		return
	}
	job, err := d.run.Start(entry, d.onChildExit)
	if err != nil {
		cmdName, _ := entry.Command()
		d.log.Errorf("spawning %s: %v", cmdName, err)
		return
	}
	d.running = job
}

// onChildExit is invoked from the runner's wait goroutine. It clears the
// running slot and lets the next queued entry start.
func (d *Daemon) onChildExit(result runner.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.running = nil
	d.metric.jobsTotal.WithLabelValues(classLabel(result.Class)).Inc()
	d.metric.queueDepth.Set(float64(d.queue.Len()))
	d.log.Infof("child exited: class=%s code=%d signal=%d", classLabel(result.Class), result.Code, result.Signal)
	d.processQueueLocked()
}

func classLabel(c runner.ExitClass) string {
	switch c {
	case runner.ExitNormal:
		return "normal"
	case runner.ExitSignaled:
		return "signaled"
	default:
		return "other"
	}
}

func errorReply(msg string) wire.Node {
	return wire.Object(map[string]wire.Node{
		"type":    wire.String("error"),
		"message": wire.String(msg),
	})
}
