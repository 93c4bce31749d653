// Package metrics provides Prometheus metrics for Lingvo: counters for
// learning activity, the economy, and chat fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Learning ───────────────────────────────────────────────────────────────

// LessonsCompleted counts lesson-completion events.
var LessonsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "lessons_completed_total",
	Help:      "Total lesson completion events processed.",
})

// Promotions counts level promotions.
var Promotions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "level_promotions_total",
	Help:      "Total level promotions.",
})

// ─── Economy ────────────────────────────────────────────────────────────────

// XPAwarded counts XP granted across all users.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
})

// CoinsAwarded counts coins granted for lesson improvements.
var CoinsAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "coins_awarded_total",
	Help:      "Total coins awarded for lesson improvements.",
})

// ShopPurchases counts completed shop purchases by item.
var ShopPurchases = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "shop_purchases_total",
	Help:      "Total completed shop purchases.",
}, []string{"item"})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreaksBroken counts streak resets.
var StreaksBroken = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "streaks_broken_total",
	Help:      "Total streak breaks.",
})

// FreezesConsumed counts streak freezes spent saving streaks.
var FreezesConsumed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "streak_freezes_consumed_total",
	Help:      "Total streak freezes consumed.",
})

// ─── Chat / Advice ──────────────────────────────────────────────────────────

// ChatClients tracks currently connected SSE chat subscribers.
var ChatClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lingvo",
	Name:      "chat_clients_connected",
	Help:      "Currently connected chat stream subscribers.",
})

// AdviceGenerated counts AI advice generations by outcome.
var AdviceGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lingvo",
	Name:      "advice_generated_total",
	Help:      "Total tutoring advice generations.",
}, []string{"outcome"})
