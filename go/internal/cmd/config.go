package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forkcast/forkcast/go/internal/game"
	"github.com/forkcast/forkcast/go/internal/scheduler"
	"github.com/forkcast/forkcast/go/internal/voting"
)

type Config struct {
	Voting struct {
		ProposalPhase time.Duration `yaml:"proposal_phase"`
		VotingPhase   time.Duration `yaml:"voting_phase"`
		PortionWindow time.Duration `yaml:"portion_window"`
	} `yaml:"voting"`
	Game struct {
		IdleSessionTTL time.Duration `yaml:"idle_session_ttl"`
	} `yaml:"game"`
	Scheduler struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"scheduler"`
	Events struct {
		Publisher     string `yaml:"publisher"` // "jetstream" or "mock"
		NatsURL       string `yaml:"nats_url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
		NotifyChannel string `yaml:"notify_channel"`
	} `yaml:"events"`
}

// loadConfig reads the YAML config file; a missing file falls back to
// defaults so local runs work with environment variables alone.
func loadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

func (c *Config) votingConfig() voting.Config {
	cfg := voting.DefaultConfig()
	if c.Voting.ProposalPhase > 0 {
		cfg.ProposalPhaseDuration = c.Voting.ProposalPhase
	}
	if c.Voting.VotingPhase > 0 {
		cfg.VotingPhaseDuration = c.Voting.VotingPhase
	}
	if c.Voting.PortionWindow > 0 {
		cfg.PortionWindow = c.Voting.PortionWindow
	}
	return cfg
}

func (c *Config) gameConfig() game.Config {
	cfg := game.DefaultConfig()
	if c.Game.IdleSessionTTL > 0 {
		cfg.IdleSessionTTL = c.Game.IdleSessionTTL
	}
	return cfg
}

func (c *Config) schedulerConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	if c.Scheduler.Interval > 0 {
		cfg.Interval = c.Scheduler.Interval
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
