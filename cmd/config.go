package cmd

const DESCRIPTION = `
iback keeps testing your Internet connection until it is fast enough
again, then tells you that the Internet is back.

A test measures ping, download and upload. When a test fails it is
retried after --error-retry-time seconds, when the connection is slower
than the thresholds it is retried after --failure-retry-time seconds.
`

// Defaults of the flags that take a value. Retry times are seconds, the
// max time is milliseconds.
const (
	minDownloadDefault      = "0.01"
	minUploadDefault        = "0.01"
	maxPingDefault          = "5000"
	maxTimeDefault          = "5000"
	errorRetryTimeDefault   = "60"
	failureRetryTimeDefault = "0"
)
