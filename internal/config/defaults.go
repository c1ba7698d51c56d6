package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultTelegramRequestTimeout = 30 * time.Second

	DefaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	DefaultYouTubeMaxResults = 5
	DefaultYouTubeMaxRetries = 2
	DefaultYouTubeTimeout    = 15 * time.Second
	DefaultYouTubeCacheTTL   = 6 * time.Hour

	DefaultWarningTTL = 10 * time.Second

	DefaultDBPath = "storage.db"

	DefaultJobTimeout = 30 * time.Second
)

// DefaultSuspiciousPatterns flag chat invites and link shorteners.
var DefaultSuspiciousPatterns = []string{
	`t\.me/\w+`,
	`bit\.ly/\w+`,
}

// DefaultTasks are the recurring maintenance jobs.
var DefaultTasks = map[string]any{
	"sql_maintenance": map[string]any{
		"enabled":  true,
		"schedule": "0 0 4 * * *",
	},
	"search_cache_purge": map[string]any{
		"enabled":  true,
		"schedule": "0 */30 * * * *",
	},
}

// DefaultMessages are the user facing texts.
var DefaultMessages = MessagesConfig{
	Welcome: "🎵 <b>Hello %s!</b> 🎵\n\n" +
		"I'm a music and moderation bot.\n\n" +
		"<b>What I do:</b>\n" +
		"• 🔍 Search songs on YouTube\n" +
		"• 🛡️ Remove rule-breaking messages automatically\n" +
		"• 👤 Show user and chat info\n\n" +
		"<b>Usage:</b> add me to your group and make me an admin!",
	Help: "<b>Commands</b>\n" +
		"/search &lt;query&gt; - search YouTube\n" +
		"/id - show your info, or reply to a message to see its author\n" +
		"/start - welcome message\n" +
		"/help - this message",
	Warning: "⚠️ <b>A message was removed</b>\n\n" +
		"Sorry %s, your message was removed because it contains prohibited content.\n\n" +
		"📜 <b>Please follow the group rules</b>",
	SearchUsage: "❌ <b>Usage:</b>\n<code>/search song name</code>\n\n" +
		"Example: <code>/search Mohammed Abdu Ya Ghayeb</code>",
	Searching:       "🔍 Searching for: <b>%s</b>...",
	NoResults:       "❌ No results found",
	SearchError:     "❌ Something went wrong while searching",
	GeneralError:    "❌ An error occurred. Please try again later.",
	AddToGroupAck:   "✅ Tap the button below and pick a group to add me to!",
	AddToGroupLabel: "➕ Add me to your group",
	ChannelLabel:    "📢 Bot channel",
	WatchLabel:      "▶️ Watch on YouTube",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	// Keys without a useful default are still registered so AutomaticEnv
	// picks them up during Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.channel_url", "")
	v.SetDefault("telegram.request_timeout", DefaultTelegramRequestTimeout)

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.base_url", DefaultYouTubeBaseURL)
	v.SetDefault("youtube.max_results", DefaultYouTubeMaxResults)
	v.SetDefault("youtube.max_retries", DefaultYouTubeMaxRetries)
	v.SetDefault("youtube.timeout", DefaultYouTubeTimeout)
	v.SetDefault("youtube.cache_ttl", DefaultYouTubeCacheTTL)

	v.SetDefault("moderation.banned_words", []string{})
	v.SetDefault("moderation.suspicious_patterns", DefaultSuspiciousPatterns)
	v.SetDefault("moderation.warning_ttl", DefaultWarningTTL)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("scheduler.tasks", DefaultTasks)
	v.SetDefault("scheduler.job_timeout", DefaultJobTimeout)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.warning", DefaultMessages.Warning)
	v.SetDefault("messages.search_usage", DefaultMessages.SearchUsage)
	v.SetDefault("messages.searching", DefaultMessages.Searching)
	v.SetDefault("messages.no_results", DefaultMessages.NoResults)
	v.SetDefault("messages.search_error", DefaultMessages.SearchError)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.add_to_group_ack", DefaultMessages.AddToGroupAck)
	v.SetDefault("messages.add_to_group", DefaultMessages.AddToGroupLabel)
	v.SetDefault("messages.channel", DefaultMessages.ChannelLabel)
	v.SetDefault("messages.watch", DefaultMessages.WatchLabel)
}
