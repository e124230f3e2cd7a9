// Package config provides Viper-based configuration loading for the dungeon simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns result persistence on; the simulator runs without a database otherwise.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. The simulator prints combats
	// to stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// CombatConfig holds the tunable combat rules.
type CombatConfig struct {
	// EquippedLossChance is the probability in [0,1] of losing one equipped item on defeat.
	EquippedLossChance float64 `mapstructure:"equipped_loss_chance"`
	// InitiativeDie is the exclusive upper bound of the initiative roll.
	InitiativeDie         int `mapstructure:"initiative_die"`
	BackpackSlots         int `mapstructure:"backpack_slots"`
	EscapeAttemptsPerTurn int `mapstructure:"escape_attempts_per_turn"`
	MaxInvalidActions     int `mapstructure:"max_invalid_actions"`
}

// LootConfig weights the category of each loot roll.
type LootConfig struct {
	EquipmentChance float64 `mapstructure:"equipment_chance"`
	MaterialChance  float64 `mapstructure:"material_chance"`
	KeyChance       float64 `mapstructure:"key_chance"`
	KeyUses         int     `mapstructure:"key_uses"`
}

// ContentConfig locates the YAML content and Lua scripts.
type ContentConfig struct {
	Dir        string `mapstructure:"dir"`
	ScriptsDir string `mapstructure:"scripts_dir"`
	// InstructionLimit bounds the Lua opcodes of one hook call; 0 uses the scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// SimulationConfig drives cmd/simulate.
type SimulationConfig struct {
	// Seed makes a run reproducible; 0 draws from crypto/rand.
	Seed        uint64   `mapstructure:"seed"`
	DungeonTier int      `mapstructure:"dungeon_tier"`
	Enemies     []string `mapstructure:"enemies"`
	// KeyModifiers are ids from the key_modifiers content directory.
	KeyModifiers []string `mapstructure:"key_modifiers"`
	AllowEscape  bool     `mapstructure:"allow_escape"`
	// FleeBelow is the health fraction below which the automatic player tries to escape.
	FleeBelow    float64 `mapstructure:"flee_below"`
	EscapeChance float64 `mapstructure:"escape_chance"`
	// StarterKit lists equipment template ids granted and equipped before every run.
	StarterKit []string `mapstructure:"starter_kit"`
	// PlayerHealth is the player's base max health.
	PlayerHealth int `mapstructure:"player_health"`
	Runs         int `mapstructure:"runs"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Loot       LootConfig       `mapstructure:"loot"`
	Content    ContentConfig    `mapstructure:"content"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, check := range []func() error{
		func() error { return validateLogging(c.Logging) },
		func() error { return validateCombat(c.Combat) },
		func() error { return validateLoot(c.Loot) },
		func() error { return validateContent(c.Content) },
		func() error { return validateSimulation(c.Simulation) },
	} {
		if err := check(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.EquippedLossChance < 0 || c.EquippedLossChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.equipped_loss_chance must be in [0,1], got %v", c.EquippedLossChance))
	}
	if c.InitiativeDie < 1 {
		errs = append(errs, fmt.Sprintf("combat.initiative_die must be >= 1, got %d", c.InitiativeDie))
	}
	if c.BackpackSlots < 0 {
		errs = append(errs, fmt.Sprintf("combat.backpack_slots must be >= 0, got %d", c.BackpackSlots))
	}
	if c.EscapeAttemptsPerTurn < 0 {
		errs = append(errs, fmt.Sprintf("combat.escape_attempts_per_turn must be >= 0, got %d", c.EscapeAttemptsPerTurn))
	}
	if c.MaxInvalidActions < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_invalid_actions must be >= 1, got %d", c.MaxInvalidActions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLoot(l LootConfig) error {
	var errs []string
	if l.EquipmentChance < 0 || l.MaterialChance < 0 || l.KeyChance < 0 {
		errs = append(errs, "loot chances must be >= 0")
	}
	if l.EquipmentChance+l.MaterialChance+l.KeyChance <= 0 {
		errs = append(errs, "loot chances must not all be zero")
	}
	if l.KeyUses < 1 {
		errs = append(errs, fmt.Sprintf("loot.key_uses must be >= 1, got %d", l.KeyUses))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.DungeonTier < 1 {
		errs = append(errs, fmt.Sprintf("simulation.dungeon_tier must be >= 1, got %d", s.DungeonTier))
	}
	if len(s.Enemies) == 0 {
		errs = append(errs, "simulation.enemies must not be empty")
	}
	if s.FleeBelow < 0 || s.FleeBelow > 1 {
		errs = append(errs, fmt.Sprintf("simulation.flee_below must be in [0,1], got %v", s.FleeBelow))
	}
	if s.EscapeChance < 0 || s.EscapeChance > 1 {
		errs = append(errs, fmt.Sprintf("simulation.escape_chance must be in [0,1], got %v", s.EscapeChance))
	}
	if s.PlayerHealth < 1 {
		errs = append(errs, fmt.Sprintf("simulation.player_health must be >= 1, got %d", s.PlayerHealth))
	}
	if s.Runs < 1 {
		errs = append(errs, fmt.Sprintf("simulation.runs must be >= 1, got %d", s.Runs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUNGEON_ prefix
	v.SetEnvPrefix("DUNGEON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dungeon")
	v.SetDefault("database.password", "dungeon")
	v.SetDefault("database.name", "dungeon")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("combat.equipped_loss_chance", 0.25)
	v.SetDefault("combat.initiative_die", 20)
	v.SetDefault("combat.backpack_slots", 20)
	v.SetDefault("combat.escape_attempts_per_turn", 1)
	v.SetDefault("combat.max_invalid_actions", 32)

	v.SetDefault("loot.equipment_chance", 0.7)
	v.SetDefault("loot.material_chance", 0.2)
	v.SetDefault("loot.key_chance", 0.1)
	v.SetDefault("loot.key_uses", 1)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.instruction_limit", 0)

	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.dungeon_tier", 1)
	v.SetDefault("simulation.enemies", []string{"goblin_grunt"})
	v.SetDefault("simulation.allow_escape", true)
	v.SetDefault("simulation.flee_below", 0.2)
	v.SetDefault("simulation.escape_chance", 0.5)
	v.SetDefault("simulation.starter_kit", []string{"rusty_sword", "padded_vest", "leather_cap"})
	v.SetDefault("simulation.player_health", 100)
	v.SetDefault("simulation.runs", 1)
}
