package config

// DefaultConfigYAML returns a commented YAML string for init-config.
func DefaultConfigYAML() string {
	return `# bashbros configuration
# Generated by: bashbros init-config
#
# Lookup order: ./.bashbros.yml, ~/.bashbros.yml, ~/.bashbros/config.yml.
# Every field is optional; unset fields keep the profile's defaults.

# Profile selects the baseline settings:
#   strict     - blocks on loop and anomaly detections
#   balanced   - curated allow list of common development commands
#   permissive - allow everything not on the block list
profile: balanced

# Label for the host agent, recorded with every session.
agent: unknown

commands:
  # Glob patterns. "*" matches any run of characters; matching is
  # case-insensitive and anchored at both ends. An empty allow list
  # disables the allow check; the block list is always enforced.
  allow: []
  block: []

paths:
  # Path prefixes. "*" in allow skips the allow check.
  allow: ["*"]
  block: ["/etc", "/boot", "/sys", "/proc"]

secrets:
  enabled: true
  mode: block
  # Extra globs marking secret paths, e.g. "*.pem" or ".ssh/*".
  patterns: []

audit:
  enabled: true
  # local | remote | both. Remote requires an https:// URL.
  destination: local
  remote_url: ""

rate_limit:
  enabled: true
  max_per_minute: 100
  max_per_hour: 2000

risk_scoring:
  enabled: true
  warn_threshold: 6
  block_threshold: 9
  # Extra patterns: regex, score 1-10, human label.
  patterns: []

loop_detection:
  enabled: true
  max_repeats: 3
  max_turns: 500
  window_size: 20
  similarity_threshold: 0.85
  cooldown_ms: 60000
  # warn | block
  action: warn

# Webhook notifications for denied commands. Each entry posts a JSON
# payload when a matching denial happens.
#   format: generic | slack | pagerduty
#   events: violation types to subscribe to ("blocked" means any denial)
# notifications:
#   - url: https://hooks.slack.com/services/...
#     format: slack
#     events: [blocked]
notifications: []

anomaly_detection:
  enabled: true
  working_hours:
    start: 7
    end: 23
  typical_commands_per_minute: 20
  learning_commands: 100
  # Extra regexes added to the built-in suspicious set.
  patterns: []
  # warn | block
  action: warn
`
}
