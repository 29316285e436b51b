package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const objectIDTag = "objectid"

// Validator wraps validator/v10 with English messages and JSON field names.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(objectIDTag, func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	registerTranslation(validate, translator, objectIDTag, "{0} must be a valid id")
	registerTranslation(validate, translator, "required", "{0} is required", true)

	validate.RegisterStructValidation(questionStructLevel, QuestionInput{})

	return &Validator{validate: validate, translator: translator}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	ovrd := len(override) > 0 && override[0]
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// questionStructLevel rejects a correct option that does not index into options.
func questionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionInput)
	if q.CorrectOption == nil {
		return
	}
	if *q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options) {
		sl.ReportError(q.CorrectOption, "correctOption", "CorrectOption", "option_index", "")
	}
}

// Struct validates s and converts failures into a *ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Message: "Invalid input"}
	for _, fe := range verrs {
		msg := fe.Translate(v.translator)
		if fe.Tag() == "option_index" {
			msg = "correctOption must be the index of one of the options"
		}
		out.Fields = append(out.Fields, FieldError{Field: trimNamespace(fe.Namespace()), Message: msg})
	}
	return out
}

// trimNamespace drops the root struct name: "CreateQuizInput.questions[0].options" -> "questions[0].options".
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
