package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors maps a form field (its JSON name) to a message for the user.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// labels name fields in messages, keyed by struct and field.
var labels = map[string]string{
	"BlogForm.Slug":         "Slug",
	"BlogForm.Name":         "Name",
	"BlogForm.Image":        "Image URL",
	"BlogForm.Desc":         "Description",
	"PostForm.Slug":         "Slug",
	"PostForm.Title":        "Post title",
	"PostForm.Body":         "Post body",
	"PostForm.Image":        "Image URL",
	"CommentForm.Body":      "Comment body",
	"ProfileForm.Username":  "Username",
	"ProfileForm.Fullname":  "Full name",
	"ProfileForm.Avatar":    "Avatar URL",
	"ProfileForm.About":     "Text",
	"ProfileForm.Facebook":  "Facebook URL",
	"ProfileForm.Twitter":   "Twitter URL",
	"ProfileForm.LinkedIn":  "LinkedIn URL",
	"ProfileForm.Github":    "GitHub URL",
	"ProfileForm.Instagram": "Instagram URL",
}

func label(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if l, ok := labels[ns]; ok {
		return l
	}
	return fe.StructField()
}

func message(fe validator.FieldError) string {
	l := label(fe)
	switch fe.Tag() {
	case "required":
		return l + " is required"
	case "slug":
		return l + " can have only letters (a-z, A-Z), numbers (0-9), underscores (_) and dashes (-)."
	case "min":
		return fmt.Sprintf("%s is too short. Minimum length is %s chars.", l, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long. Maximum length is %s chars.", l, fe.Param())
	case "url":
		return l + " is not a valid URL"
	}
	return fmt.Sprintf("%s is invalid (%s)", l, fe.Tag())
}

// Validate checks a form. It returns FieldErrors when a rule fails.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out[name]; !seen {
			out[name] = message(fe)
		}
	}
	return out
}
