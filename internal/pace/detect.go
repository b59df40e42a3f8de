package pace

import (
	"context"
	"strings"

	"github.com/matsen/jrec/internal/logger"
)

// DefaultBlockToken is the marker the profile site shows when it suspects
// automated traffic.
const DefaultBlockToken = "captcha"

// Detector recognizes a blocking page and backs off.
//
// It never retries: the caller continues with whatever it was doing, and the
// unit of work that hit the block usually fails on its own.
type Detector struct {
	token    string
	cooldown Range
	pacer    *Pacer
	log      logger.Logger
}

// NewDetector creates a Detector. An empty token disables detection.
func NewDetector(token string, cooldown Range, pacer *Pacer, log logger.Logger) *Detector {
	return &Detector{
		token:    strings.ToLower(token),
		cooldown: cooldown,
		pacer:    pacer,
		log:      log,
	}
}

// Blocked reports whether text contains the blocking token, ignoring case.
func (d *Detector) Blocked(text string) bool {
	return d.token != "" && strings.Contains(strings.ToLower(text), d.token)
}

// Check reports whether text shows a blocking page. On a match it logs a
// warning and sleeps through the cooldown before returning true.
func (d *Detector) Check(ctx context.Context, text string) bool {
	if !d.Blocked(text) {
		return false
	}
	wait := d.pacer.Pick(d.cooldown)
	d.log.Warn("Blocking page detected, cooling down",
		logger.String("token", d.token),
		logger.Duration("cooldown", wait),
	)
	if err := d.pacer.sleeper.Sleep(ctx, wait); err != nil {
		d.log.Debug("Cooldown interrupted", logger.Error(err))
	}
	return true
}
