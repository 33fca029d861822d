// Package health serves the liveness and readiness probes of the gateway.
//
// [LivenessHandler] always answers healthy while the process serves requests.
// [ReadinessHandler] runs a set of named [Checks] in parallel under a shared
// timeout and answers 503 when any of them fails. The gateway registers the
// Redis connection (when configured) and the vendor token file as checks.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "redis": redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// Responses are JSON:
//
//	{"status":"unhealthy","service":"speakerhub","checks":{"redis":{"status":"unhealthy","error":"connection refused","duration":"2ms"}}}
//
// Probes that only look at the status line can request ?format=text to get
// "OK" or "Service Unavailable".
//
// [Run] executes the same checks outside HTTP; [Response.Err] turns a failed
// result into an error wrapping [ErrCheckFailed].
package health
