/*
Package observability exposes robot activity as Prometheus metrics.

Metrics are fed through domain.LifecycleHooks, so the engine stays unaware of
Prometheus:

	m := observability.NewMetrics(prometheus.NewRegistry())
	eng, _ := toyrobot.New(toyrobot.WithLifecycleHooks(m.Hooks(logger)))
*/
package observability
