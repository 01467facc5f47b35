package climate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a shared first load. It does not follow the deadline of
// whichever request happened to start the load.
const LoadTimeout = 15 * time.Second

type clientIPKey struct{}

// WithClientIP attaches the caller's address to ctx. Get and Onboard hand it
// to the user's aggregator for IP geolocation.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFrom returns the address set by WithClientIP, or "".
func ClientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Factory builds an unloaded aggregator for userID with its own sources.
type Factory func(userID string) *Aggregator

// Registry keeps one aggregator per known user.
type Registry struct {
	build Factory
	group singleflight.Group

	mu   sync.RWMutex
	aggs map[string]*Aggregator
}

func NewRegistry(build Factory) *Registry {
	return &Registry{build: build, aggs: make(map[string]*Aggregator)}
}

// Get returns the user's aggregator, loading it from the store on first use.
// A user that never onboarded gets ErrNoProfile and is not registered.
//
// The load is shared by concurrent callers, so it runs detached from ctx
// under LoadTimeout; a caller that gives up still gets ctx.Err().
func (r *Registry) Get(ctx context.Context, userID string) (*Aggregator, error) {
	ip := ClientIPFrom(ctx)
	r.mu.RLock()
	a, ok := r.aggs[userID]
	r.mu.RUnlock()
	if ok {
		a.ReportClientIP(ip)
		return a, nil
	}

	ch := r.group.DoChan(userID, func() (any, error) {
		r.mu.RLock()
		a, ok := r.aggs[userID]
		r.mu.RUnlock()
		if ok {
			return a, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		a = r.build(userID)
		a.ReportClientIP(ip)
		if err := a.Load(lctx); err != nil {
			return nil, err
		}
		r.put(a)
		return a, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		a := res.Val.(*Aggregator)
		a.ReportClientIP(ip)
		return a, nil
	}
}

// Onboard creates a new user named name and registers its aggregator.
func (r *Registry) Onboard(ctx context.Context, name string) (*Aggregator, error) {
	a := r.build(uuid.NewString())
	a.ReportClientIP(ClientIPFrom(ctx))
	if _, err := a.InitializeUser(ctx, name); err != nil {
		return nil, err
	}
	r.put(a)
	return a, nil
}

func (r *Registry) put(a *Aggregator) {
	r.mu.Lock()
	r.aggs[a.UserID()] = a
	r.mu.Unlock()
}

// Each calls fn for every registered aggregator in user id order and joins
// the errors fn returns. It stops early only when ctx is done.
func (r *Registry) Each(ctx context.Context, fn func(*Aggregator) error) error {
	r.mu.RLock()
	list := make([]*Aggregator, 0, len(r.aggs))
	for _, a := range r.aggs {
		list = append(list, a)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].UserID() < list[j].UserID() })

	var errs []error
	for _, a := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aggs)
}
