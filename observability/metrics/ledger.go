package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	transactions *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	posts        prometheus.Counter
	votes        *prometheus.CounterVec
	rewardClaims prometheus.Counter
	rewardUnits  prometheus.Counter
	tips         prometheus.Counter
	tipUnits     prometheus.Counter
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the lazily registered collectors for runtime and creator fund
// activity.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Subsystem: "runtime",
				Name:      "transactions_total",
				Help:      "Executed transactions segmented by instruction and outcome.",
			}, []string{"instruction", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "creatorfund",
				Subsystem: "runtime",
				Name:      "transaction_duration_seconds",
				Help:      "Transaction execution latency including lock acquisition.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"instruction"}),
			posts: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "posts_created_total",
				Help:      "Posts published.",
			}),
			votes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "votes_cast_total",
				Help:      "Votes cast by vote type.",
			}, []string{"type"}),
			rewardClaims: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "rewards_claimed_total",
				Help:      "Creator rewards settled.",
			}),
			rewardUnits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "reward_base_units_total",
				Help:      "Base units paid out as creator rewards.",
			}),
			tips: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "tips_total",
				Help:      "Tips delivered to creators.",
			}),
			tipUnits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Name:      "tip_base_units_total",
				Help:      "Base units moved by tips.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.transactions,
			ledgerRegistry.latency,
			ledgerRegistry.posts,
			ledgerRegistry.votes,
			ledgerRegistry.rewardClaims,
			ledgerRegistry.rewardUnits,
			ledgerRegistry.tips,
			ledgerRegistry.tipUnits,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) ObserveTransaction(instruction, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if instruction == "" {
		instruction = "unknown"
	}
	m.transactions.WithLabelValues(instruction, outcome).Inc()
	m.latency.WithLabelValues(instruction).Observe(elapsed.Seconds())
}

func (m *LedgerMetrics) ObservePostCreated() {
	if m == nil {
		return
	}
	m.posts.Inc()
}

func (m *LedgerMetrics) ObserveVote(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.votes.WithLabelValues(kind).Inc()
}

func (m *LedgerMetrics) ObserveRewardClaimed(amount uint64) {
	if m == nil {
		return
	}
	m.rewardClaims.Inc()
	m.rewardUnits.Add(float64(amount))
}

func (m *LedgerMetrics) ObserveTip(amount uint64) {
	if m == nil {
		return
	}
	m.tips.Inc()
	m.tipUnits.Add(float64(amount))
}

// TransactionCount exposes the transaction counter for tests and dashboards.
func (m *LedgerMetrics) TransactionCount(instruction, outcome string) prometheus.Counter {
	return m.transactions.WithLabelValues(instruction, outcome)
}

// VoteCount exposes the vote counter for the given type.
func (m *LedgerMetrics) VoteCount(kind string) prometheus.Counter {
	return m.votes.WithLabelValues(kind)
}
