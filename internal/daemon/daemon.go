// Package daemon owns the Event Loop: it fuses the listening socket,
// per-client byte streams, the scheduler timer, and child-exit
// notifications into one deterministic dispatch discipline.
//
// Grounded on flextape/service/service.go's mutex-guarded single-writer
// Service struct (background goroutines call into locked methods; the
// lock is the single point of serialization a kqueue-driven single thread
// would otherwise give for free) and on machinist/mserver/factory.go's
// `New(mods ...Modifier)` functional-options constructor.
package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/System233/poudriered/internal/config"
	"github.com/System233/poudriered/internal/hooks"
	"github.com/System233/poudriered/internal/logx"
	"github.com/System233/poudriered/internal/queue"
	"github.com/System233/poudriered/internal/runner"
	"github.com/System233/poudriered/internal/scheduler"
)

// Daemon is the central orchestrator. The queue, the running job, and
// request handling are guarded by mu; shutdown is guarded separately by
// shutdownOnce, and the Config Cache swaps its pointer atomically.
type Daemon struct {
	mu sync.Mutex

	cache  *config.Cache
	queue  queue.Queue
	run    *runner.Runner
	log    logx.Logger
	jails  hooks.JailLister
	ports  hooks.PortsLister
	metric *metrics

	running    *runner.Job
	configPath string

	listener     *net.UnixListener
	done         chan struct{}
	closeErr     error
	shutdownOnce sync.Once
}

// Option configures a Daemon at construction time.
type Option func(*Daemon)

// WithLogger overrides the default logger.
func WithLogger(l logx.Logger) Option {
	return func(d *Daemon) { d.log = l }
}

// WithJailLister overrides the `jail` operation's platform hook.
func WithJailLister(f hooks.JailLister) Option {
	return func(d *Daemon) { d.jails = f }
}

// WithPortsLister overrides the `ports` operation's platform hook.
func WithPortsLister(f hooks.PortsLister) Option {
	return func(d *Daemon) { d.ports = f }
}

// WithRunner overrides the Child Runner implementation.
func WithRunner(r *runner.Runner) Option {
	return func(d *Daemon) { d.run = r }
}

// New builds a Daemon bound to cache, the already-loaded Config Cache, and
// configPath, the file reload re-reads from disk.
func New(cache *config.Cache, configPath string, mods ...Option) *Daemon {
	d := &Daemon{
		cache:      cache,
		configPath: configPath,
		log:        logx.New("poudriered", "info"),
		run:        runner.New("/usr/local/bin/poudriere", "poudriered"),
		done:       make(chan struct{}),
		metric:     newMetrics(),
	}
	for _, m := range mods {
		m(d)
	}
	return d
}

// currentConfig is a small convenience accessor used throughout the
// handlers.
func (d *Daemon) currentConfig() *config.Config {
	return d.cache.Current()
}

// Listen binds the UNIX socket named by the active config: mode 0666,
// unlinked before bind and on clean shutdown.
func (d *Daemon) Listen() error {
	path := d.currentConfig().Socket
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return fmt.Errorf("daemon: resolving socket path %s: %w", path, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("daemon: listening on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0666); err != nil {
		ln.Close()
		return fmt.Errorf("daemon: chmod socket %s: %w", path, err)
	}
	d.listener = ln
	return nil
}

// Run drives the Event Loop until Shutdown is called or ctx is canceled:
// it accepts new clients, and runs the scheduler on a one-second period,
// registered once, iff the active policy declares a schedule section.
func (d *Daemon) Run(ctx context.Context) error {
	if d.listener == nil {
		if err := d.Listen(); err != nil {
			return err
		}
	}

	go d.acceptLoop()

	if len(d.currentConfig().Schedule) > 0 {
		go d.tickLoop(ctx)
	}

	select {
	case <-ctx.Done():
		d.Shutdown()
		return ctx.Err()
	case <-d.done:
		return d.closeErr
	}
}

func (d *Daemon) acceptLoop() {
	for {
		conn, err := d.listener.AcceptUnix()
		if err != nil {
			select {
			case <-d.done:
				return
			default:
			}
			d.log.Warnf("accept: %v", err)
			return
		}
		go d.handleConn(conn)
	}
}

func (d *Daemon) tickLoop(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case <-t.C:
			d.Tick(time.Now().UTC())
		}
	}
}

// Tick runs the Scheduler against now and enqueues any commands whose
// entries fire, then drains the queue.
func (d *Daemon) Tick(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fired := scheduler.Tick(now, d.currentConfig().Schedule)
	for _, entry := range fired {
		d.queue.Append(entry)
		d.log.Infof("new command queued")
	}
	d.metric.queueDepth.Set(float64(d.queue.Len()))
	d.processQueueLocked()
}

// Shutdown implements the `quit` operation and the signal-driven
// clean-shutdown path: it unlinks the socket and stops the Event Loop. It
// deliberately does not kill a running child — there is no explicit
// shutdown treatment for a running child, that's left to the host
// process model.
func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		var errs *multierror.Error
		if d.listener != nil {
			if err := d.listener.Close(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("closing listener: %w", err))
			}
		}
		if path := d.currentConfig().Socket; path != "" {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				errs = multierror.Append(errs, fmt.Errorf("unlinking socket %s: %w", path, err))
			}
		}
		d.closeErr = errs.ErrorOrNil()
		close(d.done)
	})
}

// Reload is the HUP-signal reload path (the `reload` operation over the
// socket uses reloadLocked): parse configPath again and, only on success,
// atomically swap it into the Cache. On failure the old policy remains
// active — a reload error is non-fatal.
func (d *Daemon) Reload() bool {
	next, err := config.Load(d.configPath)
	if err != nil {
		d.log.Warnf("reload: %v", err)
		return false
	}
	d.cache.Swap(next)
	return true
}
