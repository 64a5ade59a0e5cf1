package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# movierec configuration
version: "1.0"

server:
  # Backend that answers GET /recommend?user_id=...&algo=...
  base_url: "http://localhost:5000"
  # Per-request timeout; 0 disables it
  timeout: 10s
  # Requests per second sent to the backend; 0 disables pacing
  rate_limit: 5
  burst: 2
  breaker:
    # Consecutive network/5xx failures before requests are refused; 0 disables
    failure_threshold: 5
    # Probe requests allowed while half-open
    max_requests: 1
    # How long the circuit stays open
    timeout: 30s
    # Reset interval for failure counts while closed
    interval: 1m

ui:
  # default | high-contrast | minimal
  theme: "default"
  # SVD | KNN Basic | KNN Item | Slope One | BaselineOnly | CoClustering
  default_algorithm: "SVD"
  no_emoji: false
  # Re-apply server and ui settings when this file changes
  watch_config: false

output:
  # text | json | markdown | csv
  default_format: "text"
  # auto | always | never
  color_mode: "auto"

log:
  # Diagnostic log (JSON lines), read back by "movierec history"
  file: "~/.cache/movierec/movierec.log"
  verbose: false
`
}

// MinimalSampleConfig returns a compact configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
server:
  base_url: "http://localhost:5000"
ui:
  default_algorithm: "SVD"
`
}
