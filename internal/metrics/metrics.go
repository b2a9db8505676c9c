// Package metrics содержит счётчики Prometheus, общие для всего приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DownloadsTotal считает обработанные запросы на скачивание
	// по платформе и результату.
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaload_downloads_total",
		Help: "Processed download requests by platform and outcome.",
	}, []string{"platform", "outcome"})

	// CouponsActivatedTotal считает успешные активации купонов.
	CouponsActivatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediaload_coupons_activated_total",
		Help: "Successfully activated coupons.",
	})

	// BroadcastDeliveries считает доставленные и недоставленные
	// сообщения рассылки.
	BroadcastDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaload_broadcast_deliveries_total",
		Help: "Broadcast message deliveries by result.",
	}, []string{"result"})
)
