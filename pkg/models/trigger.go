package models

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// TriggerType is the trigger vocabulary carried in workflow definitions.
// Only manual runs are wired to execution; the remaining types are stored
// and validated so definitions round-trip, but nothing schedules them.
type TriggerType string

const (
	TriggerTypeManual         TriggerType = "manual"
	TriggerTypeTaskCreated    TriggerType = "task.created"
	TriggerTypeTaskCompleted  TriggerType = "task.completed"
	TriggerTypeDueApproaching TriggerType = "due.approaching"
	TriggerTypeSchedule       TriggerType = "schedule"
)

// TriggerConfig is the payload of a trigger step.
type TriggerConfig struct {
	Type TriggerType `json:"type" validate:"required"`

	// CronExpression is only meaningful for schedule triggers.
	CronExpression string `json:"cron_expression,omitempty"`
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Validate checks the trigger payload. Schedule triggers must carry a
// parseable five-field cron expression even though this core never runs them.
func (c *TriggerConfig) Validate() error {
	switch c.Type {
	case TriggerTypeManual, TriggerTypeTaskCreated, TriggerTypeTaskCompleted, TriggerTypeDueApproaching:
		return nil
	case TriggerTypeSchedule:
		if c.CronExpression == "" {
			return fmt.Errorf("schedule trigger requires a cron expression")
		}

		if _, err := cronParser.Parse(c.CronExpression); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", c.CronExpression, err)
		}

		return nil
	default:
		return fmt.Errorf("unknown trigger type %q", c.Type)
	}
}
