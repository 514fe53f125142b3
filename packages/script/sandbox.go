package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// DefaultTimeout bounds a script's wall-clock time when none is given.
const DefaultTimeout = 5 * time.Second

// NoCollectionWarning is logged when a script sets a global without a collection.
const NoCollectionWarning = "Warning: Cannot set global variable - no collection path provided"

var errTimeout = errors.New("script timed out")

type Params struct {
	Code                string
	Timeout             time.Duration
	CollectionPath      string
	ResponseBody        string
	ResponseContentType string
}

type Result struct {
	Success               bool              `json:"success"`
	Error                 string            `json:"error,omitempty"`
	Logs                  []string          `json:"logs"`
	GlobalVariableChanges map[string]string `json:"globalVariableChanges,omitempty"`
}

// Sandbox runs post-response scripts in an isolated JavaScript runtime. Each
// run gets a fresh runtime exposing only console, client.global and response.
type Sandbox struct {
	timeout time.Duration
}

type SandboxOption func(*Sandbox)

func WithTimeout(d time.Duration) SandboxOption {
	return func(s *Sandbox) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewSandbox(opts ...SandboxOption) *Sandbox {
	s := &Sandbox{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes p.Code. It never returns an error: failures, including
// timeouts and context cancellation, are reported in the Result.
func (s *Sandbox) Run(ctx context.Context, p Params) Result {
	logs := []string{}
	changes := make(map[string]string)

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}

	vm := goja.New()

	timer := time.AfterFunc(timeout, func() { vm.Interrupt(errTimeout) })
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		logs = append(logs, strings.Join(parts, " "))
		return goja.Undefined()
	}

	bindings := map[string]any{
		"console": map[string]any{
			"log":   logFn,
			"warn":  logFn,
			"error": logFn,
		},
		"client": map[string]any{
			"global": map[string]any{
				"set": func(call goja.FunctionCall) goja.Value {
					if p.CollectionPath == "" {
						logs = append(logs, NoCollectionWarning)
						return goja.Undefined()
					}
					changes[call.Argument(0).String()] = call.Argument(1).String()
					return goja.Undefined()
				},
			},
		},
	}
	for name, value := range bindings {
		if err := vm.Set(name, value); err != nil {
			return Result{Error: fmt.Sprintf("bind %s: %v", name, err), Logs: logs}
		}
	}

	response := vm.NewObject()
	_ = response.Set("body", responseBody(vm, p.ResponseBody, p.ResponseContentType))
	if err := vm.Set("response", response); err != nil {
		return Result{Error: fmt.Sprintf("bind response: %v", err), Logs: logs}
	}

	if _, err := vm.RunString(p.Code); err != nil {
		return Result{Error: errorMessage(err, timeout), Logs: logs}
	}

	result := Result{Success: true, Logs: logs}
	if len(changes) > 0 {
		result.GlobalVariableChanges = changes
	}
	return result
}

// IsJSONContentType reports whether the content type names a JSON payload.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json") || strings.Contains(contentType, "+json")
}

func responseBody(vm *goja.Runtime, body, contentType string) goja.Value {
	raw := vm.ToValue(body)
	if body == "" || !IsJSONContentType(contentType) {
		return raw
	}

	parse, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	if !ok {
		return raw
	}
	parsed, err := parse(goja.Undefined(), raw)
	if err != nil {
		return raw
	}
	return parsed
}

func errorMessage(err error, timeout time.Duration) string {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if v, ok := interrupted.Value().(error); ok && errors.Is(v, errTimeout) {
			return fmt.Sprintf("script timed out after %s", timeout)
		}
		if v, ok := interrupted.Value().(error); ok {
			return fmt.Sprintf("script interrupted: %v", v)
		}
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return exceptionMessage(exception.Value())
	}
	return err.Error()
}

// exceptionMessage returns the message property of a thrown error object,
// or the thrown value itself.
func exceptionMessage(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) && !goja.IsNull(msg) {
			return msg.String()
		}
	}
	if v == nil {
		return "script failed"
	}
	return v.String()
}
