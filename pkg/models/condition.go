package models

import "fmt"

// ConditionType is the closed set of condition families.
type ConditionType string

const (
	ConditionValueCompare           ConditionType = "value.compare"
	ConditionTaskStatusEquals       ConditionType = "task.status.equals"
	ConditionTaskPriorityEquals     ConditionType = "task.priority.equals"
	ConditionTaskAssigneeEquals     ConditionType = "task.assignee.equals"
	ConditionTaskAssigneeEmpty      ConditionType = "task.assignee.empty"
	ConditionTaskDueOverdue         ConditionType = "task.due.overdue"
	ConditionTaskDueToday           ConditionType = "task.due.today"
	ConditionTaskDueThisWeek        ConditionType = "task.due.this_week"
	ConditionProjectCompletionAbove ConditionType = "project.completion.above"
	ConditionProjectCompletionBelow ConditionType = "project.completion.below"
)

// CompareOperator is the operator set for value.compare conditions.
type CompareOperator string

const (
	OperatorEquals      CompareOperator = "equals"
	OperatorNotEquals   CompareOperator = "not_equals"
	OperatorGreaterThan CompareOperator = "greater_than"
	OperatorLessThan    CompareOperator = "less_than"
	OperatorContains    CompareOperator = "contains"
)

// ConditionConfig is the payload of a condition step. Only the fields
// relevant to Type are read; the evaluator rejects configs whose relevant
// fields are missing.
type ConditionConfig struct {
	Type ConditionType `json:"type" validate:"required"`

	// value.compare operands. Both sides support template rendering against
	// the execution context variables.
	LeftValue  string          `json:"left_value,omitempty"`
	Operator   CompareOperator `json:"operator,omitempty"`
	RightValue string          `json:"right_value,omitempty"`

	// Task-fact conditions. TaskID falls back to the execution context's
	// implied task when empty.
	TaskID        string `json:"task_id,omitempty"`
	ExpectedValue string `json:"expected_value,omitempty"`

	// Project completion thresholds, 0-100.
	Percentage float64 `json:"percentage,omitempty"`

	// Negate inverts a cleanly evaluated result. Builders author an
	// else-branch as a second condition step with Negate set; evaluation
	// errors are never inverted.
	Negate bool `json:"negate,omitempty"`
}

// Validate checks that the fields Type dispatches on are present and in range.
func (c *ConditionConfig) Validate() error {
	switch c.Type {
	case ConditionValueCompare:
		switch c.Operator {
		case OperatorEquals, OperatorNotEquals, OperatorGreaterThan, OperatorLessThan, OperatorContains:
			return nil
		case "":
			return fmt.Errorf("value.compare condition requires an operator")
		default:
			return fmt.Errorf("unknown compare operator %q", c.Operator)
		}
	case ConditionTaskStatusEquals, ConditionTaskPriorityEquals, ConditionTaskAssigneeEquals:
		if c.ExpectedValue == "" {
			return fmt.Errorf("%s condition requires expected_value", c.Type)
		}

		return nil
	case ConditionTaskAssigneeEmpty, ConditionTaskDueOverdue, ConditionTaskDueToday, ConditionTaskDueThisWeek:
		return nil
	case ConditionProjectCompletionAbove, ConditionProjectCompletionBelow:
		if c.Percentage < 0 || c.Percentage > 100 {
			return fmt.Errorf("completion percentage %v out of range 0-100", c.Percentage)
		}

		return nil
	case "":
		return fmt.Errorf("condition type is required")
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
}
