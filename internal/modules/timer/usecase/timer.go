package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	activityin "tally/internal/modules/activity/port/in"
	"tally/internal/modules/timer/domain"
	"tally/internal/modules/timer/dto"
	timerin "tally/internal/modules/timer/port/in"
	timerout "tally/internal/modules/timer/port/out"
	"tally/internal/modules/timer/service"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timeutil"
)

// mirrorNotifier receives the fire-and-forget completion trigger. Nil
// means local-only mode. Session start is deliberately not mirrored:
// the mirror only ever holds complete rows.
type mirrorNotifier interface {
	SessionCompleted(sessionID string)
}

type Option func(*Interactor)

// WithTickInterval overrides the 1-second elapsed notification period.
func WithTickInterval(interval time.Duration) Option {
	return func(i *Interactor) { i.interval = interval }
}

type Interactor struct {
	svc         *service.TimerService
	activities  activityin.Usecase
	activeStore timerout.ActiveSessionStore
	clock       clock.Clock
	mirror      mirrorNotifier
	interval    time.Duration

	// stateMu serializes marker transitions: the idle check and the
	// marker write (and their inverse in Stop) must be atomic or two
	// concurrent starts can both observe Idle.
	stateMu sync.Mutex

	mu         sync.Mutex
	cancelTick context.CancelFunc
	subs       map[int]chan dto.ElapsedEvent
	nextSub    int
}

func NewInteractor(svc *service.TimerService, activities activityin.Usecase, activeStore timerout.ActiveSessionStore, clk clock.Clock, mirror mirrorNotifier, opts ...Option) timerin.Usecase {
	interactor := &Interactor{
		svc:         svc,
		activities:  activities,
		activeStore: activeStore,
		clock:       clk,
		mirror:      mirror,
		interval:    time.Second,
		subs:        map[int]chan dto.ElapsedEvent{},
	}
	for _, opt := range opts {
		opt(interactor)
	}
	return interactor
}

// Start moves Idle -> Running. The single-running-session invariant is
// enforced here, not in the UI, so a scripted caller cannot race past
// it. The marker is persisted before any notification goes out.
func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error) {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	if _, err := i.activeStore.LoadActive(ctx); err == nil {
		return dto.StartOutput{}, fmt.Errorf("%w: stop it before starting another", apperrors.ErrTimerRunning)
	} else if !errors.Is(err, apperrors.ErrTimerIdle) {
		return dto.StartOutput{}, err
	}
	activity, err := i.activities.Get(ctx, input.ActivityID)
	if err != nil {
		return dto.StartOutput{}, err
	}
	active := i.svc.Begin(activity.ID, activity.Name)
	if err := i.activeStore.SaveActive(ctx, active); err != nil {
		return dto.StartOutput{}, err
	}
	i.startNotifier(active)
	return dto.StartOutput{
		SessionID:    active.ID,
		ActivityID:   active.ActivityID,
		ActivityName: active.ActivityName,
		StartedAt:    active.StartedAt,
	}, nil
}

// Stop moves Running -> Idle: finalize, append to the log, fold the
// rounded minutes into the activity total, clear the marker, tear down
// the notifier, then trigger the mirror append. If the backing
// activity vanished (possible only through a hand-edited data dir),
// the session is still logged under its snapshot name and the total
// increment is skipped.
func (i *Interactor) Stop(ctx context.Context) (dto.SessionOutput, error) {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	session, err := i.svc.Finish(ctx, active)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.activities.ApplyCompletedSession(ctx, session.ActivityID, session.Duration); err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return dto.SessionOutput{}, err
	}
	i.stopNotifier()
	if i.mirror != nil {
		i.mirror.SessionCompleted(session.ID)
	}
	return mapSession(session), nil
}

func (i *Interactor) GetActive(ctx context.Context) (dto.ActiveOutput, error) {
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return dto.ActiveOutput{}, err
	}
	return dto.ActiveOutput{
		SessionID:    active.ID,
		ActivityID:   active.ActivityID,
		ActivityName: active.ActivityName,
		StartedAt:    active.StartedAt,
		Elapsed:      i.clock.Now().Sub(active.StartedAt),
	}, nil
}

func (i *Interactor) ListSessions(ctx context.Context) ([]dto.SessionOutput, error) {
	sessions, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, mapSession(session))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context) ([]dto.ActivityStatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityStatsOutput, 0, len(stats))
	for _, stat := range stats {
		out = append(out, dto.ActivityStatsOutput{
			ActivityID:   stat.ActivityID,
			ActivityName: stat.ActivityName,
			Sessions:     stat.Sessions,
			Minutes:      stat.Minutes,
		})
	}
	return out, nil
}

// Resume restarts the elapsed notifier after a process restart finds a
// persisted marker. Elapsed time picks up at now - StartedAt; nothing
// was lost while the process was gone.
func (i *Interactor) Resume(ctx context.Context) error {
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrTimerIdle) {
			return nil
		}
		return err
	}
	i.startNotifier(active)
	return nil
}

// Subscribe returns a channel of elapsed-time events and a cancel
// function. Events are display-only and dropped when the subscriber
// lags.
func (i *Interactor) Subscribe() (<-chan dto.ElapsedEvent, func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	key := i.nextSub
	i.nextSub++
	ch := make(chan dto.ElapsedEvent, 1)
	i.subs[key] = ch
	return ch, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if sub, ok := i.subs[key]; ok {
			delete(i.subs, key)
			close(sub)
		}
	}
}

func (i *Interactor) startNotifier(active domain.ActiveSession) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancelTick != nil {
		i.cancelTick()
	}
	ctx, cancel := context.WithCancel(context.Background())
	i.cancelTick = cancel
	go func() {
		ticker := time.NewTicker(i.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				i.broadcast(dto.ElapsedEvent{
					SessionID:    active.ID,
					ActivityName: active.ActivityName,
					Elapsed:      i.clock.Now().Sub(active.StartedAt),
				})
			}
		}
	}()
}

func (i *Interactor) stopNotifier() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancelTick != nil {
		i.cancelTick()
		i.cancelTick = nil
	}
}

func (i *Interactor) broadcast(event dto.ElapsedEvent) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, sub := range i.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

func mapSession(session domain.Session) dto.SessionOutput {
	return dto.SessionOutput{
		ID:           session.ID,
		ActivityID:   session.ActivityID,
		ActivityName: session.ActivityName,
		StartedAt:    session.StartedAt,
		EndedAt:      session.EndedAt,
		Duration:     session.Duration,
		Minutes:      timeutil.RoundMinutes(session.Duration),
	}
}
