package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	ticksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ddns_ticks_total",
		Help: "Reconcile ticks by outcome (updated, unchanged, skipped).",
	}, []string{"result"})

	recordUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ddns_record_updates_total",
		Help: "Record update calls to the DNS provider by result.",
	}, []string{"result"})

	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ddns_notifications_total",
		Help: "Change notifications sent by result.",
	}, []string{"result"})

	lastChange = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ddns_last_change_timestamp_seconds",
		Help: "Unix time of the last applied IP change.",
	})
)

func init() {
	metrics.Registry.MustRegister(ticksTotal, recordUpdatesTotal, notificationsTotal, lastChange)
}
