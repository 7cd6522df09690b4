package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port int `env:"PORT" envDefault:"3000"`
	}

	Discord struct {
		Token    string `env:"DISCORD_TOKEN,required"`
		ClientID string `env:"CLIENT_ID,required"`
		GuildID  string `env:"GUILD_ID" envDefault:""`

		TicketsCategory    string   `env:"TICKETS_CATEGORY" envDefault:""`
		SupportRole        string   `env:"SUPPORT_ROLE" envDefault:""`
		AdminRole          string   `env:"ADMIN_ROLE" envDefault:""`
		AllowedCloseRoles  []string `env:"ALLOWED_CLOSE_ROLES" envSeparator:","`
		LogChannel         string   `env:"LOG_CHANNEL" envDefault:""`
		TicketPanelChannel string   `env:"TICKET_PANEL_CHANNEL" envDefault:""`
		ReviewChannel      string   `env:"REVIEW_CHANNEL" envDefault:""`
		SuggestionChannel  string   `env:"SUGGESTION_CHANNEL" envDefault:""`
	}

	Supabase struct {
		URL              string `env:"SUPABASE_URL" envDefault:""`
		Key              string `env:"SUPABASE_KEY" envDefault:""`
		InvoicesTable    string `env:"SUPABASE_TABLE" envDefault:"invoices"`
		CredentialsTable string `env:"CREDENTIALS_TABLE" envDefault:"credentials"`

		// JSON map of product -> account list, used by /replace when the
		// backend is skipped.
		LocalCredentials string `env:"LOCAL_CREDENTIALS" envDefault:""`
	}

	Giveaways struct {
		// Path of the JSON store used when Redis is not configured.
		StorePath string `env:"GIVEAWAY_STORE_PATH" envDefault:"giveaways.json"`
	}

	Redis struct {
		// Empty address means the file store is used instead.
		Addr     string `env:"REDIS_ADDR" envDefault:""`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine: production sets variables directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// CloseRoles returns the role IDs allowed to drive the ticket close flow.
// ALLOWED_CLOSE_ROLES overrides; otherwise the support and admin roles apply.
func (c *Config) CloseRoles() []string {
	if len(c.Discord.AllowedCloseRoles) > 0 {
		return c.Discord.AllowedCloseRoles
	}
	roles := make([]string, 0, 2)
	if c.Discord.SupportRole != "" {
		roles = append(roles, c.Discord.SupportRole)
	}
	if c.Discord.AdminRole != "" {
		roles = append(roles, c.Discord.AdminRole)
	}
	return roles
}
