package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesPosted counts messages appended to the ledger by chat type.
	MessagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_messages_posted_total",
		Help: "Total number of messages posted",
	}, []string{"chat_type"})

	// MessageMutations counts edits and deletions.
	MessageMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_message_mutations_total",
		Help: "Total number of message edits and deletions",
	}, []string{"operation"})

	// AuthorizationDecisions counts gate decisions by action and outcome.
	AuthorizationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_authorization_decisions_total",
		Help: "Authorization gate decisions by action and outcome",
	}, []string{"action", "outcome"})

	// PagesServed counts paginated reads by listing variant.
	PagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_pages_served_total",
		Help: "Total number of message pages served",
	}, []string{"view"})

	// VisibilityCacheLookups counts block-list cache hits and misses.
	VisibilityCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_visibility_cache_lookups_total",
		Help: "Block-list exclusion set cache lookups by result",
	}, []string{"result"})
)
