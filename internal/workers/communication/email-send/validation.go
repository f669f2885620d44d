package emailsend

import (
	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/common/validation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"to_email", "task_title", "due_time"},
		Properties: map[string]validation.Property{
			"to_email": {
				Type:        "string",
				Description: "Recipient email address",
				Format:      "email",
				MaxLength:   validation.IntPtr(255),
			},
			"to_name": {
				Type:        "string",
				Description: "Recipient display name",
				MaxLength:   validation.IntPtr(255),
			},
			"task_title": {
				Type:        "string",
				Description: "Title of the task the reminder is about",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(1000),
			},
			"due_time": {
				Type:        "string",
				Description: "Formatted due time shown in the email",
				MinLength:   validation.IntPtr(1),
			},
		},
		AdditionalProperties: validation.BoolPtr(false),
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())

func validateInput(input *Input) error {
	result, err := inputValidator.Validate(input.params())
	if err != nil {
		return errors.NewEmailValidationFailedError(err.Error())
	}
	if !result.Valid {
		return errors.NewEmailValidationFailedError(result.Summary())
	}
	return nil
}
