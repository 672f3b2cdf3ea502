// Package health reports whether a textops process can serve requests.
//
// A Checker reports the state of one dependency as Healthy, Degraded or
// Unhealthy. The Aggregator runs a set of checkers under a shared timeout
// and folds their results into one status, and the HTTP handlers expose
// that status on /healthz, /readyz and /health.
//
// Two checkers cover the memo cache: StoreChecker pings any store that
// implements memo.Pinger, and BreakerChecker reports Degraded while a
// store circuit breaker is open or probing.
//
//	agg := health.NewAggregator()
//	agg.Register("store", health.NewStoreChecker("store", store, time.Second))
//	agg.Register("breaker", health.NewBreakerChecker("breaker", guarded.Breaker()))
//	health.RegisterHandlers(mux, agg)
package health
