package combat

// LogType classifies a combat log entry.
type LogType string

const (
	LogInfo    LogType = "info"
	LogState   LogType = "state"
	LogAttack  LogType = "attack"
	LogDamage  LogType = "damage"
	LogHeal    LogType = "heal"
	LogEffect  LogType = "effect"
	LogAbility LogType = "ability"
	LogIntent  LogType = "intent"
	LogInvalid LogType = "invalid"
	LogEscape  LogType = "escape"
	LogDeath   LogType = "death"
	LogLoot    LogType = "loot"
	LogPenalty LogType = "penalty"
)

// LogEntry is one line of the append-only combat log.
type LogEntry struct {
	Turn     int     `json:"turn"`
	Message  string  `json:"message"`
	Type     LogType `json:"type"`
	EntityID string  `json:"entity_id,omitempty"`
}

// DamageRecord is one entry of the damage history: who hit whom, with what, for how much.
type DamageRecord struct {
	Turn int `json:"turn"`
	// Source is "attack", an ability id or an effect id.
	Source     string     `json:"source"`
	Resolution Resolution `json:"resolution"`
}
