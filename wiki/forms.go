package wiki

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/imrenagi/go-wiki/entry"
)

// DefaultTitleMaxLength caps new titles, counted in characters.
const DefaultTitleMaxLength = 20

type FormRules struct {
	TitleMaxLength int
}

func DefaultFormRules() FormRules {
	return FormRules{
		TitleMaxLength: DefaultTitleMaxLength,
	}
}

// FieldErrors maps a form field name to a message. An empty map means the
// form is valid.
type FieldErrors map[string]string

func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

type NewEntryForm struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func ParseNewEntryForm(values url.Values) NewEntryForm {
	return NewEntryForm{
		Title:   strings.TrimSpace(values.Get("title")),
		Content: strings.TrimSpace(values.Get("content")),
	}
}

func (f NewEntryForm) Validate(rules FormRules) FieldErrors {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error("This field is required."),
			validation.By(maxRunes(rules.TitleMaxLength)),
			validation.By(storageKey)),
		validation.Field(&f.Content,
			validation.By(requiredText)),
	)
	return fieldErrors(err)
}

type EditEntryForm struct {
	Content string `json:"content"`
}

func ParseEditEntryForm(values url.Values) EditEntryForm {
	return EditEntryForm{
		Content: strings.TrimSpace(values.Get("content")),
	}
}

func (f EditEntryForm) Validate(rules FormRules) FieldErrors {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Content, validation.By(requiredText)),
	)
	return fieldErrors(err)
}

func requiredText(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("wiki.form.required", "This field is required.")
	}
	return nil
}

func maxRunes(max int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if max > 0 && utf8.RuneCountInString(s) > max {
			return validation.NewError("wiki.form.max_length",
				"Ensure this value has at most {{.max}} characters.").
				SetParams(map[string]interface{}{"max": max})
		}
		return nil
	}
}

func storageKey(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if err := entry.ValidateTitle(s); err != nil {
		return validation.NewError("wiki.form.title_invalid", "Titles cannot contain slashes or be \".\" or \"..\".")
	}
	return nil
}

// fieldErrors flattens ozzo validation errors, which are keyed by the json
// tag of each field.
func fieldErrors(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		out["__all__"] = err.Error()
		return out
	}
	for field, fieldErr := range errs {
		out[field] = fieldErr.Error()
	}
	return out
}
