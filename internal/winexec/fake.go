package winexec

import "fmt"

// Call records one invocation made through a Fake.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Fake is a Runner for tests. Handler produces the response for each
// call; when nil, every call succeeds with empty output.
type Fake struct {
	Handler func(call Call) ([]byte, error)
	Calls   []Call
}

func (f *Fake) Run(name string, args []string, stdin string) ([]byte, error) {
	call := Call{Name: name, Args: args, Stdin: stdin}
	f.Calls = append(f.Calls, call)
	if f.Handler == nil {
		return nil, nil
	}
	return f.Handler(call)
}

// CommandLines renders the recorded calls, one command per line, for
// order assertions in tests.
func (f *Fake) CommandLines() []string {
	var lines []string
	for _, call := range f.Calls {
		line := call.Name
		for _, arg := range call.Args {
			line += " " + arg
		}
		lines = append(lines, line)
	}
	return lines
}

// Failure is a convenience handler result for simulating a tool failure.
func Failure(name string) ([]byte, error) {
	return nil, fmt.Errorf("running %s failed: exit status 1", name)
}
