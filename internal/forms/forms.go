// Package forms binds and validates the HTML forms of the blog.
//
// Validation runs on gin's binding engine (go-playground/validator). Failures
// come back as Errors, keyed by the form field name, ready to be re-rendered
// next to the inputs.
package forms

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NonFieldErrors is the Errors key for problems that belong to the whole form.
const NonFieldErrors = "__all__"

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Merge(other Errors) {
	for k, v := range other {
		e.Add(k, v)
	}
}

func (e Errors) Any() bool {
	return len(e) > 0
}

var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var setupOnce sync.Once

func setup() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Println("forms: gin binding engine is not go-playground/validator")
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		log.Fatalf("forms: register notblank: %v", err)
	}
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}); err != nil {
		log.Fatalf("forms: register username: %v", err)
	}
}

// Bind fills obj from the request (urlencoded or multipart) and validates it.
func Bind(c *gin.Context, obj interface{}) Errors {
	setupOnce.Do(setup)

	errs := Errors{}
	err := c.ShouldBind(obj)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs.Add(fe.Field(), message(fe))
		}
		return errs
	}
	errs.Add(NonFieldErrors, "The submitted form could not be read.")
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

// PubDateLayouts are tried in order. Values without a zone are read as UTC.
var PubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatPubDate renders t for a datetime-local input.
func FormatPubDate(t time.Time) string {
	return t.UTC().Format(PubDateLayouts[0])
}

func parsePubDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range PubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseOptionalID reads a select value. Empty means "none".
func parseOptionalID(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	id := uint(n)
	return &id, true
}
