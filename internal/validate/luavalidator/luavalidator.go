// Package luavalidator validates documents with a Lua script.
//
// The script defines a global function
//
//	function validate(parent, children, partial)
//	  -- parent: element name in Clark notation
//	  -- children: array of names, "#PCDATA" for character data
//	  return true
//	end
//
// The script runs in a sandboxed gopher-lua state with only the base,
// table, string and math libraries; file loading is removed.
package luavalidator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/logging"
)

// FuncName is the global function the script must define.
const FuncName = "validate"

// DefaultTimeout bounds a single validate call.
const DefaultTimeout = time.Second

// ErrNoValidateFunc indicates a script without a validate function.
var ErrNoValidateFunc = errors.New("script does not define function " + FuncName)

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout bounds each validate call. Scripts that run longer are
// treated as rejecting the sequence.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithLogger sets the logger for script errors.
func WithLogger(logger *log.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator is a dom.Validator backed by a Lua function.
//
// gopher-lua states are not goroutine-safe; calls are serialized.
type Validator struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
	timeout time.Duration
	logger  *log.Logger
	closed  bool
}

var _ dom.Validator = (*Validator)(nil)

// New compiles script and looks up its validate function.
func New(script string, opts ...Option) (*Validator, error) {
	v := &Validator{
		timeout: DefaultTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(v.L)

	if err := v.run(func() error { return v.L.DoString(script) }); err != nil {
		v.L.Close()
		return nil, fmt.Errorf("load validator script: %w", err)
	}
	fn, ok := v.L.GetGlobal(FuncName).(*lua.LFunction)
	if !ok {
		v.L.Close()
		return nil, ErrNoValidateFunc
	}
	v.fn = fn
	return v, nil
}

// Load reads and compiles a script file.
func Load(path string, opts ...Option) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading validator script %s: %w", path, err)
	}
	v, err := New(string(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// openSafeLibraries opens the side-effect free standard libraries and
// removes the functions that load code from files or strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// run executes fn under the call timeout, turning Lua panics into errors.
func (v *Validator) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	v.L.SetContext(ctx)
	defer v.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Validate calls the script's validate function. Script errors and
// non-boolean results reject the sequence.
func (v *Validator) Validate(parent dom.QName, sequence []dom.QName, partial bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}

	children := v.L.NewTable()
	for _, q := range sequence {
		children.Append(lua.LString(q.String()))
	}

	var result lua.LValue = lua.LFalse
	err := v.run(func() error {
		if err := v.L.CallByParam(lua.P{Fn: v.fn, NRet: 1, Protect: true},
			lua.LString(parent.String()), children, lua.LBool(partial)); err != nil {
			return err
		}
		result = v.L.Get(-1)
		v.L.Pop(1)
		return nil
	})
	if err != nil {
		v.logger.Warn("validator script failed", logging.FieldElement, parent, logging.FieldError, err)
		return false
	}
	b, ok := result.(lua.LBool)
	return ok && bool(b)
}

// Close releases the Lua state. Validate rejects everything afterwards.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.L.Close()
}
