package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studysphere_match_requests_total",
		Help: "Partner ranking requests, labelled by cache result.",
	}, []string{"cache"})

	planGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studysphere_plan_generations_total",
		Help: "Study plan generation attempts, labelled by result.",
	}, []string{"result"})

	messagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studysphere_messages_appended_total",
		Help: "Direct messages stored.",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studysphere_ws_connections",
		Help: "Open websocket connections.",
	})
)
