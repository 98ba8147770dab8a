package services

import (
	"errors"
	"strings"
	"time"

	"github.com/Dosada05/contesthub/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"
)

// validationFailure converts ozzo field errors into a ValidationError.
func validationFailure(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fe := range fieldErrs {
			if fe != nil {
				fields[name] = fe.Error()
			}
		}
		return &ValidationError{Fields: fields}
	}
	return err
}

func nonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a number")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func after(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		t, ok := value.(time.Time)
		if !ok {
			return errors.New("must be a time")
		}
		if !t.After(now) {
			return errors.New("must be in the future")
		}
		return nil
	}
}

func contestTypeValues() []interface{} {
	out := make([]interface{}, len(models.ContestTypes))
	for i, t := range models.ContestTypes {
		out[i] = t
	}
	return out
}

func roleValues() []interface{} {
	out := make([]interface{}, len(models.UserRoles))
	for i, r := range models.UserRoles {
		out[i] = r
	}
	return out
}

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

func (in *RegisterInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 80)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.PhotoURL, validation.NilOrNotEmpty, is.URL),
	))
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	))
}

type ContestInput struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	TaskInstruction string             `json:"task_instruction"`
	ImageURL        *string            `json:"image_url,omitempty"`
	Type            models.ContestType `json:"type"`
	Price           decimal.Decimal    `json:"price"`
	Prize           decimal.Decimal    `json:"prize"`
	Deadline        time.Time          `json:"deadline"`
}

func (in *ContestInput) Validate(now time.Time) error {
	in.Name = strings.TrimSpace(in.Name)
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(3, 120)),
		validation.Field(&in.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&in.TaskInstruction, validation.Required, validation.Length(1, 5000)),
		validation.Field(&in.ImageURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&in.Type, validation.Required, validation.In(contestTypeValues()...)),
		validation.Field(&in.Price, validation.By(nonNegative)),
		validation.Field(&in.Prize, validation.By(nonNegative)),
		validation.Field(&in.Deadline, validation.Required, validation.By(after(now))),
	))
}

type UpdateProfileInput struct {
	Name     *string `json:"name,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Address  *string `json:"address,omitempty"`
}

func (in *UpdateProfileInput) Validate() error {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(2, 80)),
		validation.Field(&in.PhotoURL, is.URL),
		validation.Field(&in.Bio, validation.Length(0, 1000)),
		validation.Field(&in.Address, validation.Length(0, 300)),
	))
}

type SubmitInput struct {
	Payload string `json:"payload"`
}

func (in *SubmitInput) Validate() error {
	in.Payload = strings.TrimSpace(in.Payload)
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Payload, validation.Required, validation.Length(1, 10000)),
	))
}

type SetRoleInput struct {
	Role models.UserRole `json:"role"`
}

func (in *SetRoleInput) Validate() error {
	return validationFailure(validation.ValidateStruct(in,
		validation.Field(&in.Role, validation.Required, validation.In(roleValues()...)),
	))
}
