package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "creator_chat_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsRoomMembers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "creator_chat_room_members",
			Help: "Current number of joined members per room.",
		},
		[]string{"room"},
	)
	wsEventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "creator_chat_ws_events_delivered_total",
			Help: "Total websocket events delivered to clients.",
		},
	)
	wsJoinRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "creator_chat_join_rejections_total",
			Help: "Join attempts rejected, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRoomMembers, wsEventsDelivered, wsJoinRejections)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRoomMembers(roomID string, count int) {
	wsRoomMembers.WithLabelValues(roomID).Set(float64(count))
}

func addDelivered(count int) {
	wsEventsDelivered.Add(float64(count))
}

func incJoinRejection(reason string) {
	wsJoinRejections.WithLabelValues(reason).Inc()
}
