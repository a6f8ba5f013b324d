// Package metrics expose les compteurs Prometheus du backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartshop_orders_placed_total",
		Help: "Commandes créées avec succès",
	})

	OrdersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_orders_failed_total",
		Help: "Échecs de création de commande, par motif",
	}, []string{"reason"})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartshop_orders_cancelled_total",
		Help: "Commandes annulées (stock restauré)",
	})

	OrderAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "smartshop_order_amount",
		Help:    "Montant total des commandes créées",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})

	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_ai_requests_total",
		Help: "Appels à l'API IA, par issue (ok, fallback)",
	}, []string{"outcome"})

	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_cart_mutations_total",
		Help: "Mutations du panier, par opération",
	}, []string{"op"})
)
