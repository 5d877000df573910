package controller

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/cache"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/ipsource"
	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/notify"
)

// State is the reconciler's view of the change cache.
type State int

const (
	// StateUninitialized means no IP has ever been cached.
	StateUninitialized State = iota
	// StateSynced means the cache holds the last applied IP.
	StateSynced
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSynced:
		return "synced"
	default:
		return "unknown"
	}
}

// Action is what a tick ended up doing.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionUnchanged Action = "unchanged"
	ActionUpdated   Action = "updated"
)

// Result describes one tick.
type Result struct {
	State   State // state after the tick
	Action  Action
	IP      string
	Updated int   // records the provider accepted
	Failed  int   // records the provider rejected or could not be reached for
	Err     error // why the tick was skipped
}

// Reconciler keeps every record in Zone pointed at the current public IP.
type Reconciler struct {
	Source   ipsource.Source
	Cache    cache.Store
	DNS      dns.Provider
	Zone     *dns.Zone
	Notifier notify.Notifier // nil disables notifications
	SiteName string
	Log      logr.Logger
	Now      func() time.Time
}

// Run drives Tick from s until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, s Scheduler) {
	r.Log.Info("starting reconcile loop", "zone", r.Zone.Domain, "records", len(r.Zone.Records))
	s.Run(ctx, func(ctx context.Context) {
		r.Tick(ctx)
	})
	r.Log.Info("reconcile loop stopped")
}

// Tick runs one check-and-act cycle. Errors never escape: a failed IP
// lookup or cache access skips the tick, and a failed record update is
// logged while the remaining records are still processed.
func (r *Reconciler) Tick(ctx context.Context) Result {
	ip, err := r.Source.Fetch(ctx)
	if err != nil {
		r.Log.Error(err, "unable to fetch current IP, skipping tick")
		return r.skip(r.currentState(), "", err)
	}

	exists, err := r.Cache.Exists()
	if err != nil {
		r.Log.Error(err, "unable to check IP cache, skipping tick")
		return r.skip(StateUninitialized, ip, err)
	}

	state := StateUninitialized
	if exists {
		state = StateSynced
		changed, err := cache.Changed(r.Cache, ip)
		if err != nil {
			r.Log.Error(err, "unable to read cached IP, skipping tick")
			return r.skip(state, ip, err)
		}
		if !changed {
			r.Log.Info("no change in IP, no action taken", "ip", ip)
			ticksTotal.WithLabelValues(string(ActionUnchanged)).Inc()
			return Result{State: state, Action: ActionUnchanged, IP: ip}
		}
		r.Log.Info("IP changed", "ip", ip)
	} else {
		r.Log.Info("no cached IP, setting it", "ip", ip)
	}

	if err := r.Cache.Write(ip); err != nil {
		r.Log.Error(err, "unable to write IP cache, skipping tick")
		return r.skip(state, ip, err)
	}

	updated, failed := r.apply(ctx, ip)
	ticksTotal.WithLabelValues(string(ActionUpdated)).Inc()
	lastChange.Set(float64(r.now().Unix()))
	return Result{State: StateSynced, Action: ActionUpdated, IP: ip, Updated: updated, Failed: failed}
}

func (r *Reconciler) currentState() State {
	if ok, err := r.Cache.Exists(); err == nil && ok {
		return StateSynced
	}
	return StateUninitialized
}

func (r *Reconciler) skip(state State, ip string, err error) Result {
	ticksTotal.WithLabelValues(string(ActionSkipped)).Inc()
	return Result{State: state, Action: ActionSkipped, IP: ip, Err: err}
}

// apply pushes ip to every record in order, then notifies per accepted record.
func (r *Reconciler) apply(ctx context.Context, ip string) (updated, failed int) {
	for _, rec := range r.Zone.Records {
		rec.Value = ip
		fqdn := dns.FQDN(rec.Name, r.Zone.Domain)

		if err := r.DNS.UpdateRecord(ctx, r.Zone.ID, rec); err != nil {
			r.Log.Error(err, "record update failed", "record", fqdn, "id", rec.ID)
			recordUpdatesTotal.WithLabelValues("failed").Inc()
			failed++
			continue
		}
		recordUpdatesTotal.WithLabelValues("success").Inc()
		updated++
		r.Log.Info("record updated", "record", fqdn, "ip", ip)

		if r.Notifier == nil {
			continue
		}
		msg := notify.ChangeMessage(r.SiteName, fqdn, ip, r.now())
		if err := r.Notifier.Notify(ctx, msg); err != nil {
			r.Log.Error(err, "notification failed", "record", fqdn)
			notificationsTotal.WithLabelValues("failed").Inc()
			continue
		}
		notificationsTotal.WithLabelValues("success").Inc()
	}
	return updated, failed
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
