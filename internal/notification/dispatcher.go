package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/pkg/mailer"
)

var (
	ErrQueueFull         = errors.New("notification queue is full")
	ErrDispatcherStopped = errors.New("notification dispatcher is stopped")
)

type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type Options struct {
	Email              EmailOptions
	Workers            int
	QueueSize          int
	AttemptTimeout     time.Duration
	MaxRetries         uint64
	RedeliveryInterval time.Duration
	// NewBackOff builds the retry policy for a single job. Defaults to
	// exponential backoff starting at one second.
	NewBackOff func() backoff.BackOff
}

// maxDeliveries bounds how many times a parked job is redelivered.
const maxDeliveries = 5

type job struct {
	id         uuid.UUID
	notice     TicketNotice
	deliveries int
}

// Dispatcher sends ticket emails off the request path. Enqueue never
// blocks; jobs that exhaust their retries are parked and redelivered by
// a periodic sweep.
type Dispatcher struct {
	sender Sender
	opts   Options

	queue     chan job
	scheduler gocron.Scheduler
	wg        sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	dead    []job
}

func NewDispatcher(sender Sender, opts Options) (*Dispatcher, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 15 * time.Second
	}
	if opts.NewBackOff == nil {
		opts.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 0
			return b
		}
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("gocron.NewScheduler -> %w", err)
	}

	return &Dispatcher{
		sender:    sender,
		opts:      opts,
		queue:     make(chan job, opts.QueueSize),
		scheduler: scheduler,
	}, nil
}

func (d *Dispatcher) Start() error {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	if d.opts.RedeliveryInterval > 0 {
		_, err := d.scheduler.NewJob(
			gocron.DurationJob(d.opts.RedeliveryInterval),
			gocron.NewTask(func() {
				if n := d.Redeliver(); n > 0 {
					zap.L().Info("redelivering ticket emails", zap.Int("count", n))
				}
			}),
		)
		if err != nil {
			return fmt.Errorf("d.scheduler.NewJob -> %w", err)
		}
	}
	d.scheduler.Start()

	return nil
}

// Enqueue hands a notice to the worker pool and returns immediately.
func (d *Dispatcher) Enqueue(notice TicketNotice) (uuid.UUID, error) {
	j := job{id: uuid.New(), notice: notice}
	if err := d.push(j); err != nil {
		return uuid.Nil, err
	}

	return j.id, nil
}

func (d *Dispatcher) push(j job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Redeliver moves parked jobs back onto the queue and reports how many
// were requeued.
func (d *Dispatcher) Redeliver() int {
	d.mu.Lock()
	parked := d.dead
	d.dead = nil
	d.mu.Unlock()

	requeued := 0
	for i, j := range parked {
		if err := d.push(j); err != nil {
			d.mu.Lock()
			d.dead = append(d.dead, parked[i:]...)
			d.mu.Unlock()
			break
		}
		requeued++
	}

	return requeued
}

func (d *Dispatcher) DeadLetters() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.dead)
}

// Stop rejects new jobs, drains the queue and waits for the workers or
// for ctx, whichever comes first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	if err := d.scheduler.Shutdown(); err != nil {
		zap.L().Warn("d.scheduler.Shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	log := zap.L().With(
		zap.String("job_id", j.id.String()),
		zap.String("ticket_id", j.notice.TicketID),
	)

	msg, err := ComposeTicketEmail(d.opts.Email, j.notice)
	if err != nil {
		log.Error("ComposeTicketEmail", zap.Error(err))
		return
	}

	attempt := 0
	op := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.AttemptTimeout)
		defer cancel()

		err := d.sender.Send(ctx, msg)
		if errors.Is(err, mailer.ErrUnknownOutcome) {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.Warn("ticket email attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}

	policy := backoff.WithMaxRetries(d.opts.NewBackOff(), d.opts.MaxRetries)
	if err = backoff.Retry(op, policy); err != nil {
		// the server may have taken it; a second send could duplicate the ticket
		if errors.Is(err, mailer.ErrUnknownOutcome) {
			log.Error("ticket email outcome unknown, not resending", zap.Error(err))
			return
		}

		j.deliveries++
		if j.deliveries >= maxDeliveries {
			log.Error("ticket email not delivered, giving up",
				zap.Int("deliveries", j.deliveries), zap.Error(err))
			return
		}
		log.Error("ticket email not delivered, parking it",
			zap.Int("deliveries", j.deliveries), zap.Error(err))

		d.mu.Lock()
		d.dead = append(d.dead, j)
		d.mu.Unlock()
		return
	}

	log.Info("ticket email sent", zap.String("to", j.notice.Participant.Email))
}
