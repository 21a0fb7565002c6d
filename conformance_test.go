package nexus

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// conformCase is one scripted scenario from testdata/conformance.yaml.
type conformCase struct {
	Name              string `yaml:"name"`
	Source            string `yaml:"source"`
	WantValue         string `yaml:"want_value"`
	WantOutput        string `yaml:"want_output"`
	WantError         string `yaml:"want_error"`
	WantErrorContains string `yaml:"want_error_contains"`
}

// registerArrayHelpers installs the array constructors the fixtures use.
// The language has no array literal; arrays enter programs through host
// natives, and these three are the reference shape for such extensions.
func registerArrayHelpers(ip *Interpreter) {
	ip.RegisterNative("array", -1, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		xs := make([]Value, len(args))
		copy(xs, args)
		return Arr(xs), nil
	})
	ip.RegisterNative("push", 2, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		if args[0].Tag != VTArray {
			return Null, RuntimeErrorf(ErrType, "push() expects an array, got %s", TypeName(args[0]))
		}
		src := args[0].Data.([]Value)
		xs := make([]Value, len(src)+1)
		copy(xs, src)
		xs[len(src)] = args[1]
		return Arr(xs), nil
	})
	ip.RegisterNative("at", 2, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		if args[0].Tag != VTArray {
			return Null, RuntimeErrorf(ErrType, "at() expects an array, got %s", TypeName(args[0]))
		}
		if args[1].Tag != VTNum {
			return Null, RuntimeErrorf(ErrType, "at() expects a number index, got %s", TypeName(args[1]))
		}
		xs := args[0].Data.([]Value)
		i := int(args[1].Data.(float64))
		if i < 0 || i >= len(xs) {
			return Null, RuntimeErrorf(ErrType, "at() index %d out of range for length %d", i, len(xs))
		}
		return xs[i], nil
	})
}

func loadConformanceCases(t *testing.T) []conformCase {
	t.Helper()
	data, err := os.ReadFile("testdata/conformance.yaml")
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	var suite struct {
		Cases []conformCase `yaml:"cases"`
	}
	if err := yaml.Unmarshal(data, &suite); err != nil {
		t.Fatalf("decode fixtures: %v", err)
	}
	if len(suite.Cases) == 0 {
		t.Fatalf("no fixtures in testdata/conformance.yaml")
	}
	return suite.Cases
}

func Test_Conformance_Scripts(t *testing.T) {
	for _, tc := range loadConformanceCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			ip := NewInterpreter()
			var out bytes.Buffer
			ip.Out = &out
			registerArrayHelpers(ip)

			v, err := ip.EvalSource(tc.Source)
			if tc.WantError != "" {
				rerr, ok := err.(*RuntimeError)
				if !ok {
					t.Fatalf("want a %s, got %v", tc.WantError, err)
				}
				if string(rerr.Kind) != tc.WantError {
					t.Fatalf("error kind: want %s, got %s (%s)", tc.WantError, rerr.Kind, rerr.Msg)
				}
				if tc.WantErrorContains != "" && !strings.Contains(rerr.Msg, tc.WantErrorContains) {
					t.Fatalf("error %q does not mention %q", rerr.Msg, tc.WantErrorContains)
				}
			} else {
				if err != nil {
					t.Fatalf("eval: %v", err)
				}
				if tc.WantValue != "" && Stringify(v) != tc.WantValue {
					t.Fatalf("result: want %q, got %q", tc.WantValue, Stringify(v))
				}
			}
			if got := out.String(); got != tc.WantOutput {
				t.Fatalf("output:\nwant %q\ngot  %q", tc.WantOutput, got)
			}
		})
	}
}

// Every fixture name is unique so runs can be addressed with -run.
func Test_Conformance_FixtureNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tc := range loadConformanceCases(t) {
		if tc.Name == "" {
			t.Fatalf("fixture with empty name")
		}
		if seen[tc.Name] {
			t.Fatalf("duplicate fixture name %q", tc.Name)
		}
		seen[tc.Name] = true
	}
}
