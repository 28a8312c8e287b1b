package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/chatflow"
)

type createNodeRequest struct {
	Kind     string            `json:"kind" validate:"required,max=64"`
	Position chatflow.Position `json:"position"`
	Data     chatflow.Payload  `json:"data"`
}

type checkNodeRequest struct {
	Node chatflow.Node `json:"node"`
}

type graphRequest struct {
	Nodes []chatflow.Node `json:"nodes" validate:"max=100,dive"`
	Edges []chatflow.Edge `json:"edges" validate:"max=200,dive"`
}

type saveFlowRequest struct {
	Name  string          `json:"name" validate:"required,max=50"`
	Nodes []chatflow.Node `json:"nodes" validate:"max=100,dive"`
	Edges []chatflow.Edge `json:"edges" validate:"max=200,dive"`
}

// Flow limits mirror the editor's: 50-char names, 100 nodes, 200 edges.
var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Nodes and edges come from chatflow types, which carry no tags.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		n := sl.Current().Interface().(chatflow.Node)
		if n.ID == "" {
			sl.ReportError(n.ID, "id", "ID", "required", "")
		}
		if n.Kind == "" {
			sl.ReportError(n.Kind, "type", "Kind", "required", "")
		}
	}, chatflow.Node{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		e := sl.Current().Interface().(chatflow.Edge)
		if e.ID == "" {
			sl.ReportError(e.ID, "id", "ID", "required", "")
		}
		if e.Source == "" {
			sl.ReportError(e.Source, "source", "Source", "required", "")
		}
		if e.Target == "" {
			sl.ReportError(e.Target, "target", "Target", "required", "")
		}
	}, chatflow.Edge{})

	return v
}

// bind decodes and checks the request body into out. When it reports false the
// error response has already been written and err is what the handler returns.
func bind(c fiber.Ctx, out any) (ok bool, err error) {
	if err := c.Bind().JSON(out); err != nil {
		return false, c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := checker.Struct(out); err != nil {
		return false, c.Status(400).JSON(fiber.Map{"error": "invalid body", "fields": fieldErrors(err)})
	}
	return true, nil
}

// fieldErrors turns validator errors into namespace → message pairs.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}
