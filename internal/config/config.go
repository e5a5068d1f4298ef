// Package config loads the supervisor configuration tree from YAML.
// Missing files fall back to defaults; partial files overlay defaults.
// The gate path must never fail because of configuration problems.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bashbros/bashbros/internal/notify"
)

// CommandsConfig holds allow/block glob lists for command filtering.
type CommandsConfig struct {
	Allow []string `yaml:"allow"`
	Block []string `yaml:"block"`
}

// PathsConfig holds allow/block path prefix lists for the sandbox.
type PathsConfig struct {
	Allow []string `yaml:"allow"`
	Block []string `yaml:"block"`
}

// SecretsConfig controls the secrets guard.
type SecretsConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Mode     string   `yaml:"mode"` // warn | block
	Patterns []string `yaml:"patterns"`
}

// AuditConfig controls the audit logger.
type AuditConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Destination string `yaml:"destination"` // local | remote | both
	RemoteURL   string `yaml:"remote_url"`
}

// RateLimitConfig caps command throughput per minute and per hour.
type RateLimitConfig struct {
	Enabled      bool `yaml:"enabled"`
	MaxPerMinute int  `yaml:"max_per_minute"`
	MaxPerHour   int  `yaml:"max_per_hour"`
}

// RiskScoringConfig controls threshold-based risk enforcement.
type RiskScoringConfig struct {
	Enabled        bool                `yaml:"enabled"`
	WarnThreshold  int                 `yaml:"warn_threshold"`
	BlockThreshold int                 `yaml:"block_threshold"`
	Patterns       []RiskPatternConfig `yaml:"patterns"`
}

// RiskPatternConfig is an operator-supplied risk pattern.
type RiskPatternConfig struct {
	Pattern string `yaml:"pattern"`
	Score   int    `yaml:"score"`
	Label   string `yaml:"label"`
}

// LoopDetectionConfig controls repeat-command detection.
type LoopDetectionConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MaxRepeats          int     `yaml:"max_repeats"`
	MaxTurns            int     `yaml:"max_turns"`
	WindowSize          int     `yaml:"window_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	CooldownMs          int     `yaml:"cooldown_ms"`
	Action              string  `yaml:"action"` // warn | block
}

// WorkingHours is the [start, end) hour range considered normal.
type WorkingHours struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// AnomalyDetectionConfig controls behavioral anomaly detection.
type AnomalyDetectionConfig struct {
	Enabled                  bool         `yaml:"enabled"`
	WorkingHours             WorkingHours `yaml:"working_hours"`
	TypicalCommandsPerMinute int          `yaml:"typical_commands_per_minute"`
	LearningCommands         int          `yaml:"learning_commands"`
	Patterns                 []string     `yaml:"patterns"`
	Action                   string       `yaml:"action"` // warn | block
}

// Config is the process-wide configuration tree, immutable after load.
type Config struct {
	Profile          string                 `yaml:"profile"` // strict | balanced | permissive
	Agent            string                 `yaml:"agent"`
	Commands         CommandsConfig         `yaml:"commands"`
	Paths            PathsConfig            `yaml:"paths"`
	Secrets          SecretsConfig          `yaml:"secrets"`
	Audit            AuditConfig            `yaml:"audit"`
	RateLimit        RateLimitConfig        `yaml:"rate_limit"`
	RiskScoring      RiskScoringConfig      `yaml:"risk_scoring"`
	LoopDetection    LoopDetectionConfig    `yaml:"loop_detection"`
	AnomalyDetection AnomalyDetectionConfig `yaml:"anomaly_detection"`
	Notifications    []notify.WebhookConfig `yaml:"notifications"`
}

// blockList is the dangerous-command block list shared by all profiles.
var blockList = []string{
	"rm -rf /*",
	"rm -rf ~*",
	"rm -rf .*",
	"dd if=*of=/dev/*",
	"mkfs*",
	"> /dev/sda*",
	":(){ :|:& };:*",
	"chmod -R 777 /*",
	"curl * | bash*",
	"curl * | sh*",
	"wget * | bash*",
	"wget * | sh*",
	"*> /etc/passwd*",
	"*> /etc/shadow*",
	"sudo rm *",
	"git push --force*",
	"git push -f *",
}

// balancedAllowList is the curated allow list for the balanced profile.
var balancedAllowList = []string{
	"ls *", "ls",
	"cat *",
	"head *", "tail *", "less *", "more *",
	"cd *", "pwd",
	"echo *",
	"grep *", "find *", "rg *", "wc *",
	"git *",
	"npm *", "npx *", "node *",
	"python *", "python3 *", "pip *", "pip3 *",
	"go *", "cargo *", "make *",
	"mkdir *", "touch *", "cp *", "mv *",
	"vim *", "nvim *", "nano *", "code *",
	"which *", "env", "date", "whoami", "uname *",
	"docker ps*", "docker logs *", "docker images*",
	"curl *", "wget *",
}

// Default returns the fully populated default configuration (balanced profile).
func Default() *Config {
	return defaultsFor("balanced")
}

func defaultsFor(profile string) *Config {
	cfg := &Config{
		Profile: profile,
		Agent:   "unknown",
		Commands: CommandsConfig{
			Allow: balancedAllowList,
			Block: blockList,
		},
		Paths: PathsConfig{
			Allow: []string{"*"},
			Block: []string{"/etc", "/boot", "/sys", "/proc"},
		},
		Secrets: SecretsConfig{
			Enabled: true,
			Mode:    "block",
		},
		Audit: AuditConfig{
			Enabled:     true,
			Destination: "local",
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			MaxPerMinute: 100,
			MaxPerHour:   2000,
		},
		RiskScoring: RiskScoringConfig{
			Enabled:        true,
			WarnThreshold:  6,
			BlockThreshold: 9,
		},
		LoopDetection: LoopDetectionConfig{
			Enabled:             true,
			MaxRepeats:          3,
			MaxTurns:            500,
			WindowSize:          20,
			SimilarityThreshold: 0.85,
			CooldownMs:          60000,
			Action:              "warn",
		},
		AnomalyDetection: AnomalyDetectionConfig{
			Enabled:                  true,
			WorkingHours:             WorkingHours{Start: 7, End: 23},
			TypicalCommandsPerMinute: 20,
			LearningCommands:         100,
			Action:                   "warn",
		},
	}

	switch profile {
	case "strict":
		cfg.Commands.Allow = []string{}
		cfg.Secrets.Mode = "block"
		cfg.LoopDetection.Action = "block"
		cfg.AnomalyDetection.Action = "block"
	case "permissive":
		cfg.Commands.Allow = []string{"*"}
		cfg.RiskScoring.BlockThreshold = 10
	}

	return cfg
}

// searchPaths returns the config file locations in lookup order.
func searchPaths() []string {
	paths := []string{".bashbros.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".bashbros.yml"),
			filepath.Join(home, ".bashbros", "config.yml"),
		)
	}
	return paths
}

// Load reads configuration from the first file found in the search order.
// Missing files produce defaults. An explicit non-empty path skips the search.
// A file naming a profile gets that profile's defaults before the overlay,
// so partial files only override what they mention.
func Load(path string) (*Config, error) {
	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Default(), nil
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		for _, p := range searchPaths() {
			data, err = os.ReadFile(p)
			if err == nil {
				break
			}
		}
		if data == nil {
			return Default(), nil
		}
	}

	// First pass only to learn the profile, so the overlay starts from the
	// right defaults.
	var probe struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	profile := probe.Profile
	if profile == "" {
		profile = "balanced"
	}
	cfg := defaultsFor(profile)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
