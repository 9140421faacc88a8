package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/simpleboard/internal/identifier"
	"github.com/dyluth/simpleboard/internal/instance"
	"github.com/dyluth/simpleboard/internal/timespec"
	"github.com/dyluth/simpleboard/pkg/prefix"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
	"github.com/dyluth/simpleboard/pkg/substrate/memory"
)

const (
	// DefaultTick is applied when tick is omitted.
	DefaultTick = "50ms"

	// DefaultInterval is applied to boards without an interval.
	DefaultInterval = "20t"

	// DefaultInstance is applied when redis.instance is omitted.
	DefaultInstance = "default"
)

// Config represents the top-level simpleboard.yml configuration
type Config struct {
	Version  string                  `yaml:"version"`
	Tick     string                  `yaml:"tick,omitempty"`
	Redis    *RedisConfig            `yaml:"redis,omitempty"`
	Prefixes map[string]PrefixConfig `yaml:"prefixes,omitempty"`
	Boards   map[string]BoardConfig  `yaml:"boards"`
	Viewers  []ViewerConfig          `yaml:"viewers,omitempty"`
}

// RedisConfig locates the Redis server backing the serve and watch commands
type RedisConfig struct {
	URL      string `yaml:"url,omitempty"`
	Instance string `yaml:"instance,omitempty"`
}

// PrefixConfig describes one catalog entry
type PrefixConfig struct {
	Label      string            `yaml:"label"`
	Priority   int               `yaml:"priority"`
	Color      string            `yaml:"color,omitempty"`
	LabelColor string            `yaml:"label_color,omitempty"`
	Permission string            `yaml:"permission,omitempty"`
	Options    map[string]string `yaml:"options,omitempty"`
}

// BoardConfig describes one sidebar board. Lines may use the placeholders
// {board}, {online} and {time}.
type BoardConfig struct {
	Title      string   `yaml:"title"`
	TitleColor string   `yaml:"title_color,omitempty"`
	Interval   string   `yaml:"interval,omitempty"`
	Lines      []string `yaml:"lines"`
}

// ViewerConfig describes a simulated viewer
type ViewerConfig struct {
	Name        string   `yaml:"name"`
	ID          string   `yaml:"id,omitempty"`
	Prefix      string   `yaml:"prefix,omitempty"`
	Board       string   `yaml:"board,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// Validate performs strict validation on the configuration and applies defaults
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Tick == "" {
		c.Tick = DefaultTick
	}
	tick, err := time.ParseDuration(c.Tick)
	if err != nil || tick <= 0 {
		return fmt.Errorf("invalid tick: %s (must be a positive duration like '50ms')", c.Tick)
	}

	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.Instance == "" {
		c.Redis.Instance = DefaultInstance
	}
	if err := instance.ValidateName(c.Redis.Instance); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if len(c.Boards) == 0 {
		return fmt.Errorf("no boards defined")
	}
	for name := range c.Boards {
		board := c.Boards[name]
		if err := board.Validate(name, tick); err != nil {
			return err
		}
		c.Boards[name] = board
	}

	for name, p := range c.Prefixes {
		if err := p.Validate(name); err != nil {
			return err
		}
	}

	seen := make(map[string]bool)
	for i, v := range c.Viewers {
		if err := v.Validate(i); err != nil {
			return err
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate viewer name '%s'", v.Name)
		}
		seen[v.Name] = true

		if v.Prefix != "" {
			if _, ok := c.lookupPrefix(v.Prefix); !ok {
				return fmt.Errorf("viewer '%s': unknown prefix '%s'", v.Name, v.Prefix)
			}
		}
		if v.Board != "" {
			if _, ok := c.Boards[v.Board]; !ok {
				return fmt.Errorf("viewer '%s': unknown board '%s'", v.Name, v.Board)
			}
		}
	}

	return nil
}

func (c *Config) lookupPrefix(name string) (PrefixConfig, bool) {
	for key, p := range c.Prefixes {
		if strings.EqualFold(key, name) {
			return p, true
		}
	}
	return PrefixConfig{}, false
}

// Validate performs validation on a single board configuration
func (b *BoardConfig) Validate(name string, tick time.Duration) error {
	if err := identifier.ValidateName(name); err != nil {
		return fmt.Errorf("board '%s': %w", name, err)
	}
	if b.Title == "" {
		return fmt.Errorf("board '%s': title is required", name)
	}
	if b.TitleColor != "" {
		if _, err := richtext.ParseColor(b.TitleColor); err != nil {
			return fmt.Errorf("board '%s': %w", name, err)
		}
	}
	if b.Interval == "" {
		b.Interval = DefaultInterval
	}
	if _, err := timespec.Parse(b.Interval, tick); err != nil {
		return fmt.Errorf("board '%s': %w", name, err)
	}
	return nil
}

// Validate performs validation on a single prefix configuration
func (p *PrefixConfig) Validate(name string) error {
	if name == "" {
		return fmt.Errorf("prefix name cannot be empty")
	}
	if p.Label == "" {
		return fmt.Errorf("prefix '%s': label is required", name)
	}
	if p.Priority < 0 {
		return fmt.Errorf("prefix '%s': priority must be >= 0, got %d", name, p.Priority)
	}
	for _, c := range []string{p.Color, p.LabelColor} {
		if c == "" {
			continue
		}
		if _, err := richtext.ParseColor(c); err != nil {
			return fmt.Errorf("prefix '%s': %w", name, err)
		}
	}
	for option, status := range p.Options {
		if _, err := substrate.ParseOption(option); err != nil {
			return fmt.Errorf("prefix '%s': %w", name, err)
		}
		if _, err := substrate.ParseOptionStatus(status); err != nil {
			return fmt.Errorf("prefix '%s': %w", name, err)
		}
	}
	return nil
}

// Validate performs validation on a single viewer configuration
func (v *ViewerConfig) Validate(index int) error {
	if v.Name == "" {
		return fmt.Errorf("viewer #%d: name is required", index+1)
	}
	if v.ID != "" {
		if _, err := uuid.Parse(v.ID); err != nil {
			return fmt.Errorf("viewer '%s': invalid id: %w", v.Name, err)
		}
	}
	return nil
}

// TickLength returns the configured tick. Only valid after Validate.
func (c *Config) TickLength() time.Duration {
	tick, _ := time.ParseDuration(c.Tick)
	return tick
}

// IntervalOf returns the board's update interval for the given tick. Only
// valid after Validate.
func (b BoardConfig) IntervalOf(tick time.Duration) time.Duration {
	d, _ := timespec.Parse(b.Interval, tick)
	return d
}

// TitleComponent returns the board title as rich text.
func (b BoardConfig) TitleComponent() richtext.Component {
	if color, err := richtext.ParseColor(b.TitleColor); err == nil && b.TitleColor != "" {
		return richtext.Colored(b.Title, color)
	}
	return richtext.Plain(b.Title)
}

// Render expands the placeholders of every line.
func (b BoardConfig) Render(board string, online int, now time.Time) []richtext.Component {
	r := strings.NewReplacer(
		"{board}", board,
		"{online}", strconv.Itoa(online),
		"{time}", now.Format("15:04:05"),
	)
	out := make([]richtext.Component, 0, len(b.Lines))
	for _, line := range b.Lines {
		out = append(out, richtext.Plain(r.Replace(line)))
	}
	return out
}

// BoardNames returns the board names in sorted order.
func (c *Config) BoardNames() []string {
	names := make([]string, 0, len(c.Boards))
	for name := range c.Boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition builds the prefix definition described by p.
func (p PrefixConfig) Definition() (*prefix.Definition, error) {
	label := richtext.Plain(p.Label)
	if p.LabelColor != "" {
		color, err := richtext.ParseColor(p.LabelColor)
		if err != nil {
			return nil, err
		}
		label = richtext.Colored(p.Label, color)
	}

	def := prefix.NewDefinition(label, p.Priority).WithPermission(p.Permission)
	if p.Color != "" {
		color, err := richtext.ParseColor(p.Color)
		if err != nil {
			return nil, err
		}
		def.WithColor(color)
	}
	for name, value := range p.Options {
		option, err := substrate.ParseOption(name)
		if err != nil {
			return nil, err
		}
		status, err := substrate.ParseOptionStatus(value)
		if err != nil {
			return nil, err
		}
		def.WithOption(option, status)
	}
	return def, nil
}

// Catalog builds a prefix catalog holding every configured prefix.
func (c *Config) Catalog() (*prefix.Catalog, error) {
	catalog := prefix.NewCatalog()
	for name, p := range c.Prefixes {
		def, err := p.Definition()
		if err != nil {
			return nil, fmt.Errorf("prefix '%s': %w", name, err)
		}
		if err := catalog.Override(name, def); err != nil {
			return nil, fmt.Errorf("prefix '%s': %w", name, err)
		}
	}
	return catalog, nil
}

// Identity returns the viewer's configured id, or a stable id derived from
// its name when none is configured.
func (v ViewerConfig) Identity() uuid.UUID {
	if id, err := uuid.Parse(v.ID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("simpleboard:viewer:"+v.Name))
}

// Player builds the simulated viewer.
func (v ViewerConfig) Player() *memory.Player {
	return &memory.Player{UUID: v.Identity(), DisplayName: v.Name, Permissions: v.Permissions}
}

// BoardFor returns the board a viewer is shown: its configured board, or the
// first board by name.
func (c *Config) BoardFor(v ViewerConfig) string {
	if v.Board != "" {
		return v.Board
	}
	names := c.BoardNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// ApplyEnv overrides file values from the environment: REDIS_URL and
// SIMPLEBOARD_INSTANCE.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if url := getenv("REDIS_URL"); url != "" {
		c.Redis.URL = url
	}
	if instance := getenv("SIMPLEBOARD_INSTANCE"); instance != "" {
		c.Redis.Instance = instance
	}
}

// Load reads and validates simpleboard.yml from the specified path.
// Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.ApplyEnv(os.Getenv)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
