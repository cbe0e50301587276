package rules

// AlertRules returns the picker's operational alerts.
func AlertRules() PrometheusRule {
	return newPrometheusRule("picker-alerts", RuleGroup{
		Name: "picker-alerts",
		Rules: []Rule{
			alert("PickerDown",
				`absent(up{job="unsplash-picker"})`, "2m", SeverityCritical,
				"Unsplash Picker is down",
				"The unsplash-picker job has been absent for more than 2 minutes."),
			alert("PickerReadinessDown",
				`picker_readyz_up == 0`, "2m", SeverityCritical,
				"Unsplash Picker readiness check is failing",
				"The response cache has been unreachable for more than 2 minutes."),
			alert("PickerHighErrorRate",
				`picker:http_errors:rate5m / picker:http_requests:rate5m > 0.05`, "5m", SeverityWarning,
				"High HTTP error rate on Unsplash Picker",
				"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
			alert("PickerHandlerPanics",
				`sum(increase(picker_http_panics_total[5m])) > 0`, "0m", SeverityWarning,
				"Unsplash Picker handlers are panicking",
				"A handler panicked and was recovered in the last 5 minutes; check the logs for the stack."),
			alert("PickerFetchFailures",
				`sum(picker:fetch_failures:rate5m) > 0`, "10m", SeverityWarning,
				"Page fetches are failing",
				"Data sources have been failing to load pages for more than 10 minutes."),
			alert("PickerUnsplashQuotaLow",
				`picker_unsplash_ratelimit_remaining / picker_unsplash_ratelimit_limit < 0.1`, "5m", SeverityWarning,
				"Unsplash rate limit is nearly exhausted",
				"Less than 10% of the hourly Unsplash allowance remains."),
			alert("PickerHourlyLimitReached",
				`increase(picker_unsplash_hourly_limit_hits_total[5m]) > 0`, "0m", SeverityCritical,
				"Unsplash hourly limit has been reached",
				"Requests are being refused locally until the hourly window resets."),
			alert("PickerNotificationFailures",
				`increase(picker_notification_failures_total[5m]) > 0`, "1m", SeverityWarning,
				"Selection notification failures detected",
				"One or more committed selections failed to reach the webhook."),
		},
	})
}
