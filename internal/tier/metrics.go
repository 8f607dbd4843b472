package tier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tierUpgradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tier_upgrades_total",
	Help: "Tier promotions by destination tier",
}, []string{"tier"})
