package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the host configuration, read from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	// CommandPrefixes is the ordered candidate list for prefix matching;
	// the first prefix a message starts with wins.
	CommandPrefixes []string `env:"COMMAND_PREFIXES" envSeparator:"," envDefault:"!"`

	IgnoreBots   bool `env:"IGNORE_BOTS" envDefault:"true"`
	SelfOnly     bool `env:"SELF_ONLY" envDefault:"false"`
	IgnoreGuilds bool `env:"IGNORE_GUILDS" envDefault:"false"`
	IgnoreDMs    bool `env:"IGNORE_DMS" envDefault:"false"`

	// Dispatch rate limiting, invocations per second.
	RateInitial float64 `env:"RATE_INITIAL" envDefault:"5"`
	RateMin     float64 `env:"RATE_MIN" envDefault:"1"`
	RateMax     float64 `env:"RATE_MAX" envDefault:"20"`
}

// New parses the configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
