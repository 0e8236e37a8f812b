package cmd

import "github.com/urfave/cli"

var (
	minDownload      string
	minUpload        string
	maxPing          string
	maxTime          string
	silent           bool
	stickyNotify     bool
	noSounds         bool
	notifyOnErrors   bool
	logErrors        bool
	errorRetryTime   string
	noErrorRetry     bool
	notifyOnFailures bool
	logFailures      bool
	failureRetryTime string
	noFailureRetry   bool

	proxyURL    string
	downloadURL string
	uploadURL   string
	pingURL     string
	logFile     string
	verbose     bool
	serveAddr   string
	rpcSecret   string
)

// monitorFlags keeps the multi-letter short names of the original tool, so
// short option handling stays off.
var monitorFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "min-download, d",
		Usage:       "minimum download speed in Mbps to pass the test",
		Value:       minDownloadDefault,
		EnvVar:      "IBACK_MIN_DOWNLOAD",
		Destination: &minDownload,
	},
	cli.StringFlag{
		Name:        "min-upload, u",
		Usage:       "minimum upload speed in Mbps to pass the test",
		Value:       minUploadDefault,
		EnvVar:      "IBACK_MIN_UPLOAD",
		Destination: &minUpload,
	},
	cli.StringFlag{
		Name:        "max-ping, p",
		Usage:       "maximum ping in ms to pass the test",
		Value:       maxPingDefault,
		EnvVar:      "IBACK_MAX_PING",
		Destination: &maxPing,
	},
	cli.StringFlag{
		Name:        "max-time, mt",
		Usage:       "maximum length of a single test run in ms",
		Value:       maxTimeDefault,
		EnvVar:      "IBACK_MAX_TIME",
		Destination: &maxTime,
	},
	cli.BoolFlag{
		Name:        "silent, s",
		Usage:       "don't send notifications",
		EnvVar:      "IBACK_SILENT",
		Destination: &silent,
	},
	cli.BoolFlag{
		Name:        "sticky-notifications, sn, stiky-notifications",
		Usage:       "make all notifications wait",
		EnvVar:      "IBACK_STICKY_NOTIFICATIONS",
		Destination: &stickyNotify,
	},
	cli.BoolFlag{
		Name:        "no-sounds, ns",
		Usage:       "stop the notification sounds",
		EnvVar:      "IBACK_NO_SOUNDS",
		Destination: &noSounds,
	},
	cli.BoolFlag{
		Name:        "notify-on-errors, noe",
		Usage:       "show a notification when an error occurs",
		EnvVar:      "IBACK_NOTIFY_ON_ERRORS",
		Destination: &notifyOnErrors,
	},
	cli.BoolFlag{
		Name:        "log-errors, le",
		Usage:       "log errors",
		EnvVar:      "IBACK_LOG_ERRORS",
		Destination: &logErrors,
	},
	cli.StringFlag{
		Name:        "error-retry-time, ert",
		Usage:       "seconds to wait before retrying when an error occurs",
		Value:       errorRetryTimeDefault,
		EnvVar:      "IBACK_ERROR_RETRY_TIME",
		Destination: &errorRetryTime,
	},
	cli.BoolFlag{
		Name:        "no-error-retry, ner",
		Usage:       "don't retry when an error occurs",
		EnvVar:      "IBACK_NO_ERROR_RETRY",
		Destination: &noErrorRetry,
	},
	cli.BoolFlag{
		Name:        "notify-on-failures, nof",
		Usage:       "show a notification when the Internet is slow",
		EnvVar:      "IBACK_NOTIFY_ON_FAILURES",
		Destination: &notifyOnFailures,
	},
	cli.BoolFlag{
		Name:        "log-failures, lf",
		Usage:       "log failures (slow Internet)",
		EnvVar:      "IBACK_LOG_FAILURES",
		Destination: &logFailures,
	},
	cli.StringFlag{
		Name:        "failure-retry-time, frt",
		Usage:       "seconds to wait before retrying when the Internet is slow",
		Value:       failureRetryTimeDefault,
		EnvVar:      "IBACK_FAILURE_RETRY_TIME",
		Destination: &failureRetryTime,
	},
	cli.BoolFlag{
		Name:        "no-failure-retry, nfr",
		Usage:       "don't retry when the Internet is slow",
		EnvVar:      "IBACK_NO_FAILURE_RETRY",
		Destination: &noFailureRetry,
	},
	cli.StringFlag{
		Name:        "proxy",
		Usage:       "run the tests through a proxy (http, https or socks5 URL)",
		EnvVar:      "IBACK_PROXY",
		Destination: &proxyURL,
	},
	cli.StringFlag{
		Name:        "download-url",
		Usage:       "endpoint streaming the download payload",
		EnvVar:      "IBACK_DOWNLOAD_URL",
		Destination: &downloadURL,
	},
	cli.StringFlag{
		Name:        "upload-url",
		Usage:       "endpoint accepting the upload payload",
		EnvVar:      "IBACK_UPLOAD_URL",
		Destination: &uploadURL,
	},
	cli.StringFlag{
		Name:        "ping-url",
		Usage:       "endpoint used to measure latency",
		EnvVar:      "IBACK_PING_URL",
		Destination: &pingURL,
	},
	cli.StringFlag{
		Name:        "log-file",
		Usage:       "write a rotating log to this file",
		EnvVar:      "IBACK_LOG_FILE",
		Destination: &logFile,
	},
	cli.BoolFlag{
		Name:        "verbose",
		Usage:       "also write the log to stderr",
		EnvVar:      "IBACK_VERBOSE",
		Destination: &verbose,
	},
	cli.StringFlag{
		Name:        "serve",
		Usage:       "publish events over a JSON-RPC WebSocket feed on this address",
		EnvVar:      "IBACK_SERVE",
		Destination: &serveAddr,
	},
	cli.StringFlag{
		Name:        "rpc-secret",
		Usage:       "bearer token required by the event feed",
		EnvVar:      "IBACK_RPC_SECRET",
		Destination: &rpcSecret,
	},
}
