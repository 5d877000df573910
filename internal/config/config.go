package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuriy-kovalchuk/yk-ddns-updater/internal/dns"
)

// Setting keys. They match the environment variable names.
const (
	KeyIPSource    = "IPADDR_SRC"
	KeyInterval    = "INTERVAL"
	KeyAPIKey      = "APIKEY"
	KeySecretKey   = "SECRETKEY"
	KeyZoneID      = "DMEZONEID"
	KeyRecords     = "RECORDS"
	KeyTTL         = "TTL"
	KeyUseTelegram = "USETELEGRAM"
	KeyChatID      = "CHATID"
	KeyToken       = "MYTOKEN"
	KeySiteName    = "SITENAME"
	KeyDebug       = "DEBUG"
	KeyCachePath   = "IPCACHE"
	KeyAPIURL      = "DME_API_URL"
	KeyHTTPTimeout = "HTTP_TIMEOUT"
	KeyStatusAddr  = "STATUS_ADDR"
	KeyConfigPath  = "CONFIG_PATH"
)

// Defaults for optional settings.
const (
	DefaultIPSource    = "https://ipv4.icanhazip.com/"
	DefaultInterval    = 300 * time.Second
	DefaultTTL         = 1800
	DefaultSiteName    = "mysite"
	DefaultCachePath   = "/config/ip.cache.txt"
	DefaultAPIURL      = "https://api.dnsmadeeasy.com/V2.0"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultStatusAddr  = ":8081"
)

// SettingError reports a missing or invalid setting. It is fatal at startup.
type SettingError struct {
	Key    string
	Reason string
	Err    error
}

func (e *SettingError) Error() string {
	msg := fmt.Sprintf("config: %s %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SettingError) Unwrap() error { return e.Err }

// Notify holds the optional chat notification settings.
type Notify struct {
	Enabled  bool
	ChatID   int64
	Token    string
	SiteName string
}

// Config is built once at startup and handed to every component.
type Config struct {
	IPSourceURL string
	Interval    time.Duration
	APIKey      string
	SecretKey   string
	ZoneID      string
	Records     []string // trimmed, unique, non-empty
	TTL         int
	APIURL      string
	HTTPTimeout time.Duration
	CachePath   string // empty means keep the last IP in memory only
	StatusAddr  string // empty disables the status listener
	Debug       bool
	Notify      Notify
}

// LookupFunc returns the raw value of a setting and whether it is set.
type LookupFunc func(key string) (string, bool)

// Load reads settings from the environment. When CONFIG_PATH names a YAML
// settings file its values are used for keys the environment does not set.
func Load() (*Config, error) {
	lookup := LookupFunc(os.LookupEnv)
	if path, ok := os.LookupEnv(KeyConfigPath); ok && path != "" {
		settings, err := LoadSettingsFile(path)
		if err != nil {
			return nil, err
		}
		lookup = Layered(lookup, MapLookup(settings))
	}
	return Parse(lookup)
}

// MapLookup adapts a settings map.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Layered returns the first set value among lookups.
func Layered(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, l := range lookups {
			if v, ok := l(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Parse builds and validates a Config.
func Parse(lookup LookupFunc) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		IPSourceURL: p.str(KeyIPSource, DefaultIPSource),
		Interval:    p.seconds(KeyInterval, DefaultInterval),
		APIKey:      p.required(KeyAPIKey),
		SecretKey:   p.required(KeySecretKey),
		ZoneID:      p.required(KeyZoneID),
		Records:     p.list(KeyRecords),
		TTL:         p.positiveInt(KeyTTL, DefaultTTL),
		APIURL:      p.str(KeyAPIURL, DefaultAPIURL),
		HTTPTimeout: p.seconds(KeyHTTPTimeout, DefaultHTTPTimeout),
		CachePath:   p.raw(KeyCachePath, DefaultCachePath),
		StatusAddr:  p.raw(KeyStatusAddr, DefaultStatusAddr),
		Debug:       p.flag(KeyDebug),
		Notify: Notify{
			Enabled:  p.flag(KeyUseTelegram),
			SiteName: p.str(KeySiteName, DefaultSiteName),
		},
	}
	if cfg.Notify.Enabled {
		cfg.Notify.ChatID = p.chatID(KeyChatID)
		cfg.Notify.Token = p.required(KeyToken)
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// parser keeps the first error so Parse reads like a list of fields.
type parser struct {
	lookup LookupFunc
	err    error
}

func (p *parser) fail(key, reason string, err error) {
	if p.err == nil {
		p.err = &SettingError{Key: key, Reason: reason, Err: err}
	}
}

// raw returns the value as set, including an explicit empty string.
func (p *parser) raw(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

// str treats an empty value like an unset one.
func (p *parser) str(key, def string) string {
	if v := p.raw(key, ""); v != "" {
		return v
	}
	return def
}

func (p *parser) required(key string) string {
	v := p.raw(key, "")
	if v == "" {
		p.fail(key, "is required", nil)
	}
	return v
}

func (p *parser) list(key string) []string {
	v := p.required(key)
	if v == "" {
		return nil
	}
	out := dns.UniqueNames(strings.Split(v, ","))
	if len(out) == 0 {
		p.fail(key, "has no record names", nil)
	}
	return out
}

func (p *parser) positiveInt(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a number: %q", v), err)
		return def
	}
	if n <= 0 {
		p.fail(key, "must be positive", nil)
		return def
	}
	return n
}

func (p *parser) seconds(key string, def time.Duration) time.Duration {
	n := p.positiveInt(key, int(def/time.Second))
	return time.Duration(n) * time.Second
}

func (p *parser) flag(key string) bool {
	v := p.str(key, "")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a boolean: %q", v), err)
		return false
	}
	return b
}

func (p *parser) chatID(key string) int64 {
	v := p.required(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, fmt.Sprintf("is not a chat id: %q", v), err)
		return 0
	}
	if n == 0 {
		p.fail(key, "is required", nil)
	}
	return n
}
