package config

import (
	"os"
	"strconv"
)

type Config struct {
	Host string
	Port int

	// data locations
	LogDir      string
	ChannelFile string
	ZhTableFile string

	// translation
	TranslateFrom     string
	TranslateTo       string
	TranslateProvider string

	// dedup window
	DedupBackend  string
	DedupWindowMS int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// archive index (sqlite path or mysql DSN)
	ArchiveDSN string

	// audio queue
	RabbitURL   string
	RabbitQueue string
	PlaylistDir string

	// twitch relay
	TwitchUsername string
	TwitchToken    string
	TwitchChannel  string

	// admin API auth (optional)
	AuthSecret string
}

func Load() Config {
	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = "127.0.0.1"
	}

	port := 8898
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "data/log"
	}

	channelFile := os.Getenv("CHANNEL_FILE")
	if channelFile == "" {
		channelFile = "configs/channels.yaml"
	}

	zhTableFile := os.Getenv("ZH_TABLE_FILE")
	if zhTableFile == "" {
		zhTableFile = "configs/zh-convert.json"
	}

	from := os.Getenv("TRANSLATE_FROM")
	if from == "" {
		from = "ja"
	}
	to := os.Getenv("TRANSLATE_TO")
	if to == "" {
		to = "zh-Hant"
	}
	provider := os.Getenv("TRANSLATE_PROVIDER")
	if provider == "" {
		provider = "google"
	}

	dedupBackend := os.Getenv("DEDUP_BACKEND")
	if dedupBackend == "" {
		dedupBackend = "memory"
	}
	dedupWindow := 5000
	if v := os.Getenv("DEDUP_WINDOW_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dedupWindow = n
		}
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	archiveDSN := os.Getenv("ARCHIVE_DSN")
	if archiveDSN == "" {
		archiveDSN = "data/archive.db"
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "audio_jobs"
	}

	playlistDir := os.Getenv("PLAYLIST_DIR")
	if playlistDir == "" {
		playlistDir = "data/playlist"
	}

	return Config{
		Host: host,
		Port: port,

		LogDir:      logDir,
		ChannelFile: channelFile,
		ZhTableFile: zhTableFile,

		TranslateFrom:     from,
		TranslateTo:       to,
		TranslateProvider: provider,

		DedupBackend:  dedupBackend,
		DedupWindowMS: dedupWindow,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		ArchiveDSN: archiveDSN,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,
		PlaylistDir: playlistDir,

		TwitchUsername: os.Getenv("TWITCH_USERNAME"),
		TwitchToken:    os.Getenv("TWITCH_TOKEN"),
		TwitchChannel:  os.Getenv("TWITCH_CHANNEL"),

		AuthSecret: os.Getenv("AUTH_SECRET"),
	}
}
