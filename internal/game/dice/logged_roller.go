package dice

import "go.uber.org/zap"

// Roller wraps a Source with debug logging. It is itself a Source, so it can be
// handed to any component that draws randomness.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller drawing from src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped source without logging; individual draws are
// logged by the higher level helpers below.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Percent draws a labelled percentile roll and logs it.
//
// Postcondition: 0 <= result < 100.
func (r *Roller) Percent(label string) float64 {
	v := Percent(r.src)
	r.logger.Debug("percent roll", zap.String("label", label), zap.Float64("roll", v))
	return v
}

// Chance draws a labelled probability check and logs it.
func (r *Roller) Chance(label string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Float64("chance", p),
		zap.Bool("success", ok),
	)
	return ok
}

// RollExpr parses and rolls expr, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	result, err := RollExpr(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}
