package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

// Config holds every startup-loaded setting the core and ambient
// components need. Loaded once at startup; no reload.
type Config struct {
	Area              string `json:"area"`
	Port              int    `json:"port"`
	APIPort           int    `json:"api_port"`
	DBPath            string `json:"db_path"`
	PoemMillTime      int64  `json:"poem_mill_time"` // Q, ms
	PoemScore         int    `json:"poem_score"`     // S
	MatchDataKeyName  string `json:"match_data_key_name"`
	PetCSV            string `json:"pet_csv"`
	PoemCSV           string `json:"poem_csv"`
	RobotCSV          string `json:"robot_csv"`
	TickMs            int64  `json:"tick_ms"`
}

// DefaultConfig mirrors the production defaults baked into the original
// server's constants.
func DefaultConfig() Config {
	return Config{
		Area:             "default",
		Port:             8080,
		APIPort:          8081,
		DBPath:           "poemrace.db",
		PoemMillTime:     8000,
		PoemScore:        100,
		MatchDataKeyName: "poemrace_leaderboard",
		PetCSV:           "testdata/pet.csv",
		PoemCSV:          "testdata/poem.csv",
		RobotCSV:         "testdata/robot_info.csv",
		TickMs:           33,
	}
}

// LoadConfig binds CLI flags over DefaultConfig, then, if -config names a
// JSON file (the original source's server_config.json pattern), overlays
// that file last: fields present in the file override both the defaults
// and any flags.
func LoadConfig(args []string) (Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("poemrace", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional path to a JSON config file")
	fs.StringVar(&cfg.Area, "area", cfg.Area, "deployment area label")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "WebSocket listen port")
	fs.IntVar(&cfg.APIPort, "api-port", cfg.APIPort, "REST admin API listen port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite persistence path")
	fs.Int64Var(&cfg.PoemMillTime, "poem-mill-time", cfg.PoemMillTime, "per-question time budget Q, ms")
	fs.IntVar(&cfg.PoemScore, "poem-score", cfg.PoemScore, "max per-question score S")
	fs.StringVar(&cfg.MatchDataKeyName, "leaderboard-key", cfg.MatchDataKeyName, "leaderboard sorted-set key name")
	fs.StringVar(&cfg.PetCSV, "pet-csv", cfg.PetCSV, "path to the Elo-expectation CSV")
	fs.StringVar(&cfg.PoemCSV, "poem-csv", cfg.PoemCSV, "path to the question-bank CSV")
	fs.StringVar(&cfg.RobotCSV, "robot-csv", cfg.RobotCSV, "path to the bot-identity pool CSV")
	fs.Int64Var(&cfg.TickMs, "tick-ms", cfg.TickMs, "game-thread tick cadence, ms")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if err := overlayJSONConfig(&cfg, *configPath); err != nil {
			return Config{}, fmt.Errorf("load -config %s: %w", *configPath, err)
		}
	}
	return cfg, nil
}

func overlayJSONConfig(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, cfg)
}
