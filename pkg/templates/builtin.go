package templates

import (
	"github.com/taskpilot/taskpilot/pkg/models"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// checkInstantiable expands the template once and runs the graph validator
// over the result, guaranteeing every catalog template instantiates cleanly.
func checkInstantiable(tpl *models.WorkflowTemplate) error {
	steps, triggerStepID, err := Instantiate(tpl)
	if err != nil {
		return err
	}

	draft := &models.Workflow{
		ID:             "template-check",
		Name:           tpl.Name + " (check)",
		OrganizationID: "template-check",
		ProjectID:      "template-check",
		Steps:          steps,
		TriggerStepID:  triggerStepID,
	}

	return workflow.Validate(draft)
}

func strptr(s string) *string {
	return &s
}

func builtinTemplates() []*models.WorkflowTemplate {
	return []*models.WorkflowTemplate{
		{
			Name:        "overdue-escalation",
			Description: "Notify the project lead when the current task is overdue",
			Category:    "deadlines",
			Steps: map[string]*models.Step{
				"t1": {
					ID:   "t1",
					Kind: models.StepKindTrigger,
					Name: "Manual run",
					Trigger: &models.TriggerConfig{
						Type: models.TriggerTypeManual,
					},
					NextSteps: []string{"c1"},
				},
				"c1": {
					ID:   "c1",
					Kind: models.StepKindCondition,
					Name: "Task is overdue",
					Condition: &models.ConditionConfig{
						Type: models.ConditionTaskDueOverdue,
					},
					NextSteps: []string{"a1"},
				},
				"a1": {
					ID:   "a1",
					Kind: models.StepKindAction,
					Name: "Escalate to project lead",
					Action: &models.ActionConfig{
						Type: models.ActionNotify,
						Notify: &models.NotifyData{
							Recipients: []string{"project-lead"},
							Message:    "Task {{.run.task_id}} is overdue",
						},
					},
				},
			},
			TriggerStepID: "t1",
		},
		{
			Name:        "unassigned-triage",
			Description: "Assign unassigned tasks to the triage owner, otherwise notify the current assignee",
			Category:    "triage",
			Steps: map[string]*models.Step{
				"t1": {
					ID:   "t1",
					Kind: models.StepKindTrigger,
					Name: "Manual run",
					Trigger: &models.TriggerConfig{
						Type: models.TriggerTypeManual,
					},
					NextSteps: []string{"c_empty", "c_assigned"},
				},
				"c_empty": {
					ID:   "c_empty",
					Kind: models.StepKindCondition,
					Name: "Task has no assignee",
					Condition: &models.ConditionConfig{
						Type: models.ConditionTaskAssigneeEmpty,
					},
					NextSteps: []string{"a_assign"},
				},
				"c_assigned": {
					ID:   "c_assigned",
					Kind: models.StepKindCondition,
					Name: "Task already assigned",
					Condition: &models.ConditionConfig{
						Type:   models.ConditionTaskAssigneeEmpty,
						Negate: true,
					},
					NextSteps: []string{"a_notify"},
				},
				"a_assign": {
					ID:   "a_assign",
					Kind: models.StepKindAction,
					Name: "Assign to triage owner",
					Action: &models.ActionConfig{
						Type: models.ActionTaskAssign,
						Task: &models.TaskData{
							Assignee: strptr("triage-owner"),
						},
					},
				},
				"a_notify": {
					ID:   "a_notify",
					Kind: models.StepKindAction,
					Name: "Ping current assignee",
					Action: &models.ActionConfig{
						Type: models.ActionNotify,
						Notify: &models.NotifyData{
							Recipients: []string{"assignee"},
							Message:    "Please review task {{.run.task_id}}",
						},
					},
				},
			},
			TriggerStepID: "t1",
		},
		{
			Name:        "completion-followup",
			Description: "Create a retrospective task once the project is mostly complete",
			Category:    "milestones",
			Steps: map[string]*models.Step{
				"t1": {
					ID:   "t1",
					Kind: models.StepKindTrigger,
					Name: "Manual run",
					Trigger: &models.TriggerConfig{
						Type: models.TriggerTypeManual,
					},
					NextSteps: []string{"c1"},
				},
				"c1": {
					ID:   "c1",
					Kind: models.StepKindCondition,
					Name: "Project above 80%",
					Condition: &models.ConditionConfig{
						Type:       models.ConditionProjectCompletionAbove,
						Percentage: 80,
					},
					NextSteps: []string{"a1"},
				},
				"a1": {
					ID:   "a1",
					Kind: models.StepKindAction,
					Name: "Create retrospective task",
					Action: &models.ActionConfig{
						Type: models.ActionTaskCreate,
						Task: &models.TaskData{
							Title:       strptr("Schedule project retrospective"),
							Description: strptr("The project has crossed 80% completion"),
							Priority:    strptr("medium"),
						},
					},
				},
			},
			TriggerStepID: "t1",
		},
	}
}
