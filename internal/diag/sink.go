package diag

import "sync"

// Sink receives every diagnostic the front end raises. The shape mirrors the
// static error reporter the evaluator side uses: the module being parsed, the
// best-available line, a stable code, named substitutions and the message.
type Sink interface {
	Report(module string, line int, code Code, vars map[string]string, message string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(module string, line int, code Code, vars map[string]string, message string)

// Report calls f.
func (f SinkFunc) Report(module string, line int, code Code, vars map[string]string, message string) {
	f(module, line, code, vars, message)
}

// Collector is a Sink that keeps everything it is given, in order.
// It is safe for concurrent use so several parses may share one collector.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report records a diagnostic reported through the Sink contract.
func (c *Collector) Report(module string, line int, code Code, vars map[string]string, message string) {
	c.Add(Diagnostic{
		Stage:    stageOf(code),
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Module:   module,
		Span:     Span{Filename: module, Line: line},
		Vars:     vars,
	})
}

// Add records a fully built diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Reset discards collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func stageOf(code Code) Stage {
	if len(code) > 0 && code[0] == 'L' {
		return StageLexer
	}
	return StageParser
}
