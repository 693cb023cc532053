package providers

import (
	"errors"
	"fmt"
	"net"
	"reployer/internal/structures"
	"strconv"
	"time"

	"github.com/gookit/validate"
)

const hoursPerDay = 24

var (
	ErrScheduleHours = errors.New("schedule.hours must list 24 maps or be empty")
	ErrMilestone     = errors.New("notification milestone minute out of range")
	ErrEpoch         = errors.New("schedule.epoch must be RFC3339")
	ErrNotPositive   = errors.New("value must be positive")
)

func init() {
	validate.AddValidator("hostPort", func(val any) bool {
		s, ok := val.(string)
		return ok && validHostPort(s)
	})
}

func validHostPort(s string) bool {
	host, port, err := net.SplitHostPort(s)
	if err != nil || host == "" {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p > 0 && p <= 65535
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct rules first, then the cross-field rules, and
// resolves derived fields such as the parsed schedule epoch.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if !validHostPort(c.conf.GameServer.Address) {
		return fmt.Errorf("invalid gameServer.address %q", c.conf.GameServer.Address)
	}

	positive := map[string]int64{
		"gameServer.queryTimeout": int64(c.conf.GameServer.QueryTimeout),
		"poll.interval":           int64(c.conf.Poll.Interval),
		"poll.clockInterval":      int64(c.conf.Poll.ClockInterval),
		"poll.stopGrace":          int64(c.conf.Poll.StopGrace),
		"history.capacity":        int64(c.conf.History.Capacity),
	}
	for name, val := range positive {
		if val <= 0 {
			return fmt.Errorf("%w: %s", ErrNotPositive, name)
		}
	}

	if n := len(c.conf.Schedule.Hours); n != 0 && n != hoursPerDay {
		return fmt.Errorf("%w: got %d", ErrScheduleHours, n)
	}

	for _, m := range c.conf.Notifications.Milestones {
		if m.Minute < 0 || m.Minute > 59 {
			return fmt.Errorf("%w: %d", ErrMilestone, m.Minute)
		}
	}

	if c.conf.Schedule.Epoch != "" {
		epoch, err := time.Parse(time.RFC3339, c.conf.Schedule.Epoch)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrEpoch, err)
		}
		c.conf.Schedule.EpochTime = epoch.UTC()
	}

	return nil
}
