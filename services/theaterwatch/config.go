package theaterwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	configlibsql "theaterwatch/lib/configutil/libsql"
	"theaterwatch/lib/report"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/showdiff"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/textutil"
	"theaterwatch/lib/timezone"
	"time"
)

// SourceConfig overrides a built-in source or disables it.
type SourceConfig struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Venue    string `json:"venue"`
	Kind     string `json:"kind"`
	Disabled bool   `json:"disabled"`
}

type ScrapeConfig struct {
	UserAgent         string `json:"user_agent"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	Retries           int    `json:"retries"`
	RetryDelaySeconds int    `json:"retry_delay_seconds"`
	Concurrency       int    `json:"concurrency"`
	CloudflareBypass  bool   `json:"cloudflare_bypass"`
}

func (c ScrapeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ScrapeConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

type BrowserConfig struct {
	// RemoteURL is the DevTools websocket of a running Chrome, a local
	// headless Chrome is launched when empty.
	RemoteURL    string `json:"remote_url"`
	SettleMillis int    `json:"settle_ms"`
}

type EmailConfig struct {
	Enabled        bool   `json:"enabled"`
	SubjectPrefix  string `json:"subject_prefix"`
	SmtpServer     string `json:"smtp_server"`
	SmtpPort       int    `json:"smtp_port"`
	UseTLS         bool   `json:"use_tls"`
	SenderEmail    string `json:"sender_email"`
	SenderName     string `json:"sender_name"`
	SenderPassword string `json:"sender_password"`
	// RecipientEmail may hold several addresses separated by commas.
	RecipientEmail string `json:"recipient_email"`
}

func (c EmailConfig) Recipients() []string {
	var out []string
	for _, r := range strings.Split(c.RecipientEmail, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (c EmailConfig) Smtp() report.SmtpConfig {
	return report.SmtpConfig{
		Server:     c.SmtpServer,
		Port:       c.SmtpPort,
		UseTLS:     c.UseTLS,
		Sender:     c.SenderEmail,
		SenderName: c.SenderName,
		Password:   c.SenderPassword,
		Recipients: c.Recipients(),
	}
}

type Config struct {
	SnapshotDir string `json:"snapshot_dir"`
	LogDir      string `json:"log_dir"`
	// KeepSnapshots prunes all but the newest n snapshots after each run,
	// 0 keeps everything.
	KeepSnapshots int `json:"keep_snapshots"`
	// CompareFields lists the fields whose changes make a show "updated".
	CompareFields []string `json:"compare_fields"`
	HintThreshold float64  `json:"hint_threshold"`
	// Theaters restricts runs to these source ids, empty runs every source.
	Theaters []string           `json:"theaters"`
	Sources  []SourceConfig     `json:"sources"`
	Scrape   ScrapeConfig       `json:"scrape"`
	Browser  BrowserConfig      `json:"browser"`
	Email    EmailConfig        `json:"email"`
	RunLog   configlibsql.Struct `json:"run_log"`
	Schedule string             `json:"schedule"`

	Telemetry telemetry.Config `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		SnapshotDir:   filepath.Join("data", "snapshots"),
		LogDir:        filepath.Join("data", "logs"),
		HintThreshold: showdiff.DefaultHintThreshold,
		Scrape: ScrapeConfig{
			UserAgent:         "TheaterScraperBot/1.0",
			TimeoutSeconds:    30,
			Retries:           3,
			RetryDelaySeconds: 5,
			Concurrency:       4,
			CloudflareBypass:  true,
		},
		Browser: BrowserConfig{
			SettleMillis: 1000,
		},
		Email: EmailConfig{
			Enabled:       true,
			SubjectPrefix: "[Theater Updates] ",
			SmtpServer:    "smtp.gmail.com",
			SmtpPort:      587,
			UseTLS:        true,
		},
		RunLog: configlibsql.Struct{
			File: filepath.Join("data", "runs.db"),
		},
		Schedule: "0 8 * * *",
	}
}

// env overrides, the first variable that is set wins
var (
	envSmtpServer     = []string{"SMTP_SERVER", "THEATER_SMTP_SERVER"}
	envSmtpPort       = []string{"SMTP_PORT", "THEATER_SMTP_PORT"}
	envUseTLS         = []string{"USE_TLS", "THEATER_SMTP_TLS"}
	envSenderEmail    = []string{"SENDER_EMAIL", "THEATER_SENDER_EMAIL"}
	envSenderPassword = []string{"SENDER_PASSWORD", "THEATER_SENDER_PASSWORD"}
	envRecipientEmail = []string{"RECIPIENT_EMAIL", "THEATER_RECIPIENT_EMAIL"}
)

func lookupFirst(lookup func(string) (string, bool), names []string) (string, bool) {
	for _, name := range names {
		value, ok := lookup(name)
		if ok {
			return value, true
		}
	}
	return "", false
}

// ApplyEnv overrides the email settings from the environment. Pass
// os.LookupEnv outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		names  []string
		target *string
	}{
		{envSmtpServer, &c.Email.SmtpServer},
		{envSenderEmail, &c.Email.SenderEmail},
		{envSenderPassword, &c.Email.SenderPassword},
		{envRecipientEmail, &c.Email.RecipientEmail},
	}
	for _, s := range strs {
		if value, ok := lookupFirst(lookup, s.names); ok {
			*s.target = value
		}
	}

	if value, ok := lookupFirst(lookup, envSmtpPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid smtp port %q: %w", value, err)
		}
		c.Email.SmtpPort = port
	}
	if value, ok := lookupFirst(lookup, envUseTLS); ok {
		useTLS, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return fmt.Errorf("invalid use_tls %q: %w", value, err)
		}
		c.Email.UseTLS = useTLS
	}
	return nil
}

// Fields resolves CompareFields, nil means the default field list.
func (c Config) Fields() ([]show.Field, error) {
	var fields []show.Field
	for _, name := range c.CompareFields {
		f, err := show.ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ResolveSources applies the configured overrides to the built-in sources.
// Sources that are not built in are appended and must have a parser
// registered under their id.
func (c Config) ResolveSources(builtin []scraper.Source) ([]scraper.Source, error) {
	sources := slices.Clone(builtin)
	for _, override := range c.Sources {
		id := textutil.NormalizeName(override.ID)
		if id == "" {
			return nil, fmt.Errorf("source override without an id")
		}

		idx := slices.IndexFunc(sources, func(s scraper.Source) bool {
			return s.ID == id
		})
		if override.Disabled {
			if idx >= 0 {
				sources = slices.Delete(sources, idx, idx+1)
			}
			continue
		}

		src := scraper.Source{ID: id, Kind: scraper.KindStatic}
		if idx >= 0 {
			src = sources[idx]
		}
		if override.URL != "" {
			src.URL = override.URL
		}
		if override.Venue != "" {
			src.Venue = override.Venue
		}
		if override.Kind != "" {
			kind, err := scraper.ParseKind(override.Kind)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", id, err)
			}
			src.Kind = kind
		}
		if src.URL == "" {
			return nil, fmt.Errorf("source %s has no url", id)
		}

		if idx >= 0 {
			sources[idx] = src
		} else {
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// FilterSources keeps the sources whose id is in ids, in source order. An
// empty ids keeps every source. It fails when none of ids is known.
func FilterSources(sources []scraper.Source, ids []string) ([]scraper.Source, error) {
	if len(ids) == 0 {
		return sources, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[textutil.NormalizeName(id)] = true
	}

	var out []scraper.Source
	for _, src := range sources {
		if wanted[src.ID] {
			out = append(out, src)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("No valid theater IDs found among: %s", strings.Join(ids, ", "))
	}
	return out, nil
}

// Validate returns every configuration issue found, empty when the
// configuration can be run. parsers are the registered venue parsers.
func (c Config) Validate(builtin []scraper.Source, parsers map[string]scraper.Parser) []string {
	var issues []string

	sources, err := c.ResolveSources(builtin)
	if err != nil {
		issues = append(issues, err.Error())
	}
	for _, src := range sources {
		if _, ok := parsers[src.ID]; !ok {
			issues = append(issues, fmt.Sprintf("no parser for source %s", src.ID))
		}
	}
	if err == nil && len(c.Theaters) > 0 {
		_, err := FilterSources(sources, c.Theaters)
		if err != nil {
			issues = append(issues, err.Error())
		}
	}

	_, err = c.Fields()
	if err != nil {
		issues = append(issues, err.Error())
	}
	if c.HintThreshold < 0 || c.HintThreshold > 1 {
		issues = append(issues, fmt.Sprintf("hint_threshold must be between 0 and 1, got %v", c.HintThreshold))
	}
	if c.KeepSnapshots < 0 {
		issues = append(issues, "keep_snapshots must not be negative")
	}
	if c.Scrape.Concurrency < 1 {
		issues = append(issues, "scrape.concurrency must be at least 1")
	}
	if c.Scrape.TimeoutSeconds < 1 {
		issues = append(issues, "scrape.timeout_seconds must be at least 1")
	}
	if c.Scrape.Retries < 0 {
		issues = append(issues, "scrape.retries must not be negative")
	}

	if c.Email.Enabled {
		for _, field := range c.Email.Smtp().Missing() {
			issues = append(issues, fmt.Sprintf("Missing required email config: %s", field))
		}
	}
	if c.Schedule != "" {
		err := timezone.ValidateSpec(c.Schedule)
		if err != nil {
			issues = append(issues, err.Error())
		}
	}

	for _, dir := range []string{c.SnapshotDir, c.LogDir} {
		if dir == "" {
			continue
		}
		err := checkWritable(dir)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Directory not writable: %s (%s)", dir, err))
		}
	}
	return issues
}

func checkWritable(dir string) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
