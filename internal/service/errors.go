package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tracker/internal/storage"
)

// Error details returned to clients. Internal causes are logged, never sent.
const (
	detailNotFound = "Not found."
	detailInternal = "Internal server error."
	msgRequired    = "This field is required."
	msgReadOnly    = "This field is read-only and is set from the authenticated user."
	msgNotNull     = "This field may not be null."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Report JSON field names rather than Go struct field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// FieldErrors maps a JSON field name to its validation messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func required(fields ...string) FieldErrors {
	fe := FieldErrors{}
	for _, f := range fields {
		fe.Add(f, msgRequired)
	}
	return fe
}

// readOnlyKeys may never be supplied by a client.
var readOnlyKeys = []string{"user", "owner"}

// bindJSON decodes and validates the request body into dst.
// On failure it writes a 400 response and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Could not read request body."})
		return false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return false
	}
	fe := FieldErrors{}
	for _, key := range readOnlyKeys {
		if _, ok := raw[key]; ok {
			fe.Add(key, msgReadOnly)
		}
	}
	notNull := map[string]bool{}
	nonNullFields(reflect.TypeOf(dst), notNull)
	for key, val := range raw {
		if notNull[key] && bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			fe.Add(key, msgNotNull)
		}
	}
	if len(fe) > 0 {
		c.JSON(http.StatusBadRequest, fe)
		return false
	}

	if err := binding.JSON.BindBody(body, dst); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

// nullAllowed marks field types that accept an explicit JSON null.
type nullAllowed interface {
	allowsNull()
}

var nullAllowedType = reflect.TypeOf((*nullAllowed)(nil)).Elem()

// nonNullFields adds the JSON names of t's fields that reject null to out.
// Untagged embedded structs are flattened the way encoding/json does.
func nonNullFields(t reflect.Type, out map[string]bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			nonNullFields(f.Type, out)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "" || name == "-" || f.Type.Implements(nullAllowedType) {
			continue
		}
		out[name] = true
	}
}

func writeBindError(c *gin.Context, err error) {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		fe := FieldErrors{}
		for _, v := range verrs {
			fe.Add(v.Field(), validationMessage(v))
		}
		c.JSON(http.StatusBadRequest, fe)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		c.JSON(http.StatusBadRequest, FieldErrors{field: {fmt.Sprintf("Expected %s, got %s.", typeErr.Type, typeErr.Value)}})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid payload - " + err.Error()})
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}

// fail maps a storage error to an HTTP response. Ownership mismatches come
// back from storage as ErrNotFound, so they surface as 404 like missing rows.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailNotFound})
	case errors.Is(err, storage.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, FieldErrors{"series": {"Invalid pk - object does not exist."}})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
	}
}
