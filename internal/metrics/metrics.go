package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsCreated counts successful creations by kind
	// (direct | wallet).
	TransactionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_transactions_created_total",
		Help: "Transactions created, by creation kind.",
	}, []string{"kind"})

	// TransactionsRejected counts gating rejections by reason.
	TransactionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_transactions_rejected_total",
		Help: "Transaction creation rejections, by reason.",
	}, []string{"reason"})

	FeeOracleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_fee_oracle_errors_total",
		Help: "Failed fee oracle lookups.",
	})

	MailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_mail_failures_total",
		Help: "Notification emails that could not be sent.",
	})
)
