/*
Package observability turns engine and persistence lifecycle hooks into
Prometheus metrics and structured log lines.

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
	game, err := storyloom.Open(ctx, path, storyloom.WithLifecycleHooks(hooks))
*/
package observability
