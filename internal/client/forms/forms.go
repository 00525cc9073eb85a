// Package forms validates the login and registration input before anything
// is sent to the backend.
//
// Failures are reported as a *ValidationError holding one message per
// offending field, in form order. Its First message is what the CLI shows as
// the notice; Map marks the individual fields.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/filex"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	MinimumAge = 18
)

// now is replaced in tests.
var now = time.Now

type LoginForm struct {
	NationalID string `form:"national_id" validate:"required"`
	Password   string `form:"password" validate:"required"`
}

func (f LoginForm) Validate() error {
	return validateForm(f)
}

func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{NationalID: f.NationalID, Password: f.Password}
}

// RegistrationForm fields are declared in the order errors are reported.
type RegistrationForm struct {
	NationalID  string `form:"national_id" validate:"required"`
	FirstName   string `form:"first_name" validate:"required"`
	LastName    string `form:"last_name" validate:"required"`
	DateOfBirth string `form:"date_of_birth" validate:"required,datetime=2006-01-02,adult"`
	State       string `form:"state" validate:"required"`
	LGA         string `form:"lga" validate:"required"`
	VIN         string `form:"vin" validate:"required,len=17"`
	PhotoPath   string `form:"profile_pic" validate:"required,file"`
	Password    string `form:"password" validate:"required,min=6"`
}

func (f RegistrationForm) Validate() error {
	return validateForm(f)
}

// Registration builds the request body; photo is read from PhotoPath by
// the caller.
func (f RegistrationForm) Registration(photo *filex.Photo) models.Registration {
	return models.Registration{
		NationalID:  f.NationalID,
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		DateOfBirth: f.DateOfBirth,
		State:       f.State,
		LGA:         f.LGA,
		VIN:         f.VIN,
		Password:    f.Password,
		Photo:       photo,
	}
}

type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", common.ErrValidation, e.First())
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

// First is the message of the first offending field.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

// Map returns messages keyed by form field name.
func (e *ValidationError) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

var labels = map[string]string{
	"national_id":   "National ID",
	"first_name":    "First Name",
	"last_name":     "Last Name",
	"date_of_birth": "Date of birth",
	"state":         "State",
	"lga":           "LGA",
	"vin":           "VIN",
	"profile_pic":   "Profile picture",
	"password":      "Password",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("adult", isAdult); err != nil {
		panic(err)
	}

	return v
}

// isAdult passes unparsable dates; the datetime rule reports those.
func isAdult(fl validator.FieldLevel) bool {
	dob, err := time.ParseInLocation(DateLayout, fl.Field().String(), time.Local)
	if err != nil {
		return true
	}
	return Age(dob, now()) >= MinimumAge
}

// Age counts completed years between dob and at.
func Age(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	return age
}

func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "len":
		return fmt.Sprintf("%s must be %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "datetime":
		return label + " must be in YYYY-MM-DD format."
	case "adult":
		return fmt.Sprintf("You must be at least %d years old.", MinimumAge)
	case "file":
		return label + " must be an existing file."
	}
	return label + " is invalid."
}
