package models

import (
	"regexp"
	"strconv"
	"time"
)

const (
	MinWinners = 1
	MaxWinners = 20
)

// Giveaway is one timed entry-collection event. It is keyed by the Discord
// message ID of its announcement, which is the only identifier a participant
// interaction carries.
type Giveaway struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	GuildID   string    `json:"guild_id"`
	Prize     string    `json:"prize"`
	HostID    string    `json:"host_id"`
	Winners   int       `json:"winners"`
	Deadline  time.Time `json:"deadline"`
	Entrants  []string  `json:"entrants"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// HasEnded reports whether the deadline has passed.
func (g *Giveaway) HasEnded() bool {
	return !time.Now().Before(g.Deadline)
}

// HasEntrant reports whether the user already holds an entry.
func (g *Giveaway) HasEntrant(userID string) bool {
	for _, id := range g.Entrants {
		if id == userID {
			return true
		}
	}
	return false
}

// ClampWinners bounds a requested winner count to the command surface limits.
func ClampWinners(n int) int {
	if n < MinWinners {
		return MinWinners
	}
	if n > MaxWinners {
		return MaxWinners
	}
	return n
}

var durationRe = regexp.MustCompile(`^(\d+)([mhdw])$`)

// ParseDuration parses the giveaway duration spec "<n><unit>" with unit one of
// m (minutes), h (hours), d (days), w (weeks). Anything else is rejected.
func ParseDuration(spec string) (time.Duration, bool) {
	m := durationRe.FindStringSubmatch(spec)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch m[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}

	return time.Duration(n) * unit, true
}

// FormatDuration renders a duration the way the announcement embed shows it:
// the largest of days/hours/minutes that is non-zero.
func FormatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	plural := func(n int, word string) string {
		s := strconv.Itoa(n) + " " + word
		if n != 1 {
			s += "s"
		}
		return s
	}

	switch {
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	default:
		return plural(minutes, "minute")
	}
}
