// Package health serves liveness and readiness endpoints for services that
// report errors through the Sentry appender.
//
// Liveness answers 200 as long as the process runs. Readiness runs a set of
// named checks in parallel under a shared timeout and answers 503 when any of
// them fails:
//
//	r := chi.NewRouter()
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"sentry": appender.Healthcheck(sink),
//	}))
//
// Both handlers answer plain text by default and JSON when the request asks
// for it with ?format=json or an Accept header containing application/json:
//
//	{"checks":{"sentry":{"status":"unhealthy","error":"..."}},"status":"unhealthy"}
//
// Failing checks are logged at warn level to the logger given with
// [WithLogger].
package health
