package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/audio"
	"github.com/handiism/tubemusic/internal/model"
)

// Environment variables read by ApplyEnv.
const (
	EnvOutputDir     = "TUBEMUSIC_OUTPUT_DIR"
	EnvYtDlp         = "TUBEMUSIC_YTDLP"
	EnvFFmpeg        = "TUBEMUSIC_FFMPEG"
	EnvYouTubeAPIKey = "TUBEMUSIC_YOUTUBE_API_KEY"
	EnvLogLevel      = "TUBEMUSIC_LOG_LEVEL"
)

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	OutputDir           string  `json:"output_dir"`
	MaxConcurrentTracks int     `json:"max_concurrent_tracks"`
	MaxRetries          int     `json:"max_retries"`
	RetryCooldown       float64 `json:"retry_cooldown"`
	RetryExponent       float64 `json:"retry_exponent"`
	SkipExisting        bool    `json:"skip_existing"`
	DefaultBitrate      int     `json:"default_bitrate"`

	// File naming
	FolderFormat           string `json:"folder_format"`
	FileNameFormat         string `json:"file_name_format"`
	CoverArtFileNameFormat string `json:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg"`
	ThumbnailFallback       bool `json:"thumbnail_fallback"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings
	ModifyTags    bool              `json:"modify_tags"`
	TagActions    map[string]string `json:"tag_actions,omitempty"` // tag key -> modify, empty, keep
	ClearComments bool              `json:"clear_comments"`

	// External tools
	YtDlpPath     string `json:"ytdlp_path"`
	FFmpegPath    string `json:"ffmpeg_path"`
	YouTubeAPIKey string `json:"youtube_api_key,omitempty"`

	// Proxy settings, used for cover downloads
	ProxyType    string `json:"proxy_type"` // none, system, manual
	ProxyAddress string `json:"proxy_address"`
	ProxyPort    int    `json:"proxy_port"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputDir:           filepath.Join(homeDir, "Music", "tubemusic"),
		MaxConcurrentTracks: 4,
		MaxRetries:          3,
		RetryCooldown:       0.5,
		RetryExponent:       4.0,
		SkipExisting:        true,
		DefaultBitrate:      audio.DefaultBitrate,

		FolderFormat:           "{album}",
		FileNameFormat:         "{title}.mp3",
		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,
		ThumbnailFallback:       true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags:    true,
		ClearComments: true,

		YtDlpPath:  "yt-dlp",
		FFmpegPath: "ffmpeg",

		ProxyType: "system",

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns the settings file location under the user
// configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "tubemusic", "settings.json")
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ApplyEnv overrides settings from the TUBEMUSIC_* environment variables.
// getenv is usually os.Getenv.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	overrides := []struct {
		key   string
		field *string
	}{
		{EnvOutputDir, &s.OutputDir},
		{EnvYtDlp, &s.YtDlpPath},
		{EnvFFmpeg, &s.FFmpegPath},
		{EnvYouTubeAPIKey, &s.YouTubeAPIKey},
		{EnvLogLevel, &s.LogLevel},
	}
	for _, o := range overrides {
		if v := getenv(o.key); v != "" {
			*o.field = v
		}
	}
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(s.OutputDir != "", "output_dir is empty")
	check(s.MaxConcurrentTracks >= 1, "max_concurrent_tracks must be at least 1, got %d", s.MaxConcurrentTracks)
	check(s.MaxRetries >= 1, "max_retries must be at least 1, got %d", s.MaxRetries)
	check(s.RetryCooldown >= 0, "retry_cooldown must not be negative")
	check(s.RetryExponent >= 1, "retry_exponent must be at least 1")
	check(s.DefaultBitrate > 0, "default_bitrate must be positive")
	check(s.FileNameFormat != "", "file_name_format is empty")
	check(s.CoverArtInFolderMaxSize > 0, "cover_art_in_folder_max_size must be positive")
	check(s.CoverArtInTagsMaxSize > 0, "cover_art_in_tags_max_size must be positive")

	if _, err := model.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.TagConfig(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.Proxy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	check(s.LogFormat == "text" || s.LogFormat == "json", "log_format must be text or json, got %q", s.LogFormat)

	return errors.Join(errs...)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	pf, _ := model.ParsePlaylistFormat(s.PlaylistFormat)

	return &model.PathConfig{
		OutputDir:              s.OutputDir,
		FolderFormat:           s.FolderFormat,
		FileNameFormat:         s.FileNameFormat,
		CoverArtFileNameFormat: s.CoverArtFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         pf,
	}
}

// TagConfig converts the tag settings for the audio tagger.
func (s *Settings) TagConfig() (*audio.TagConfig, error) {
	cfg := &audio.TagConfig{
		ModifyTags: s.ModifyTags,
		Comments:   audio.TagDoNotModify,
	}
	if s.ClearComments {
		cfg.Comments = audio.TagEmpty
	}

	for key, name := range s.TagActions {
		if !slices.Contains(model.TagKeys, key) {
			return nil, fmt.Errorf("tag_actions: unknown tag %q", key)
		}
		action, err := audio.ParseTagEditAction(name)
		if err != nil {
			return nil, fmt.Errorf("tag_actions.%s: %w", key, err)
		}
		if cfg.Actions == nil {
			cfg.Actions = make(map[string]audio.TagEditAction)
		}
		cfg.Actions[key] = action
	}
	return cfg, nil
}

// Proxy returns the proxy function for HTTP transports.
func (s *Settings) Proxy() (func(*http.Request) (*url.URL, error), error) {
	switch s.ProxyType {
	case "", "system":
		return http.ProxyFromEnvironment, nil
	case "none":
		return nil, nil
	case "manual":
		if s.ProxyAddress == "" {
			return nil, errors.New("proxy_address is required for a manual proxy")
		}
		host := s.ProxyAddress
		if s.ProxyPort > 0 {
			host += ":" + strconv.Itoa(s.ProxyPort)
		}
		u, err := url.Parse("http://" + host)
		if err != nil {
			return nil, fmt.Errorf("proxy_address: %w", err)
		}
		return http.ProxyURL(u), nil
	}
	return nil, fmt.Errorf("proxy_type must be none, system or manual, got %q", s.ProxyType)
}
