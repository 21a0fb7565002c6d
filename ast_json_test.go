package nexus

import (
	"reflect"
	"strings"
	"testing"
)

// allConstructs exercises every node kind the codec handles.
const allConstructs = `
var counter = 0
const limit = 3

func tick(by) {
    counter = counter + by
    return counter
}

class Base {
    func init(tag) { this.tag = tag }
    func describe() { return "base " + this.tag }
}

class Child < Base {
    func describe() { return "child " + this.tag }
}

for (var i = 0; i < limit; i = i + 1) {
    if (i == 1) continue;
    tick(i)
}

while (counter < 10) {
    counter = counter + 1
    if (counter == 7) { break }
}

var obj = Child("t")
obj.extra = !false && true || false

try {
    var oops = 1 + null
} catch (e) {
    counter = counter + len(e) * 0
}

counter
`

func Test_ASTJSON_RoundTrip_PreservesTree(t *testing.T) {
	prog := mustParse(t, allConstructs)

	data, err := EncodeProgram(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(prog, decoded) {
		t.Fatalf("round trip changed the tree\noriginal: %#v\ndecoded:  %#v", prog, decoded)
	}
}

func Test_ASTJSON_DecodedProgram_Executes(t *testing.T) {
	prog := mustParse(t, allConstructs)
	data, err := EncodeProgram(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	ip := NewInterpreter()
	want, err := ip.EvalProgram(prog, nil)
	if err != nil {
		t.Fatalf("eval original: %v", err)
	}
	got, err := NewInterpreter().EvalProgram(decoded, nil)
	if err != nil {
		t.Fatalf("eval decoded: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("decoded program diverged: want %#v, got %#v", want, got)
	}
}

func Test_ASTJSON_Output_IsDiscriminated(t *testing.T) {
	prog := mustParse(t, `var x = 1`)
	data, err := EncodeProgram(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"Program"`, `"VariableDeclaration"`, `"Literal"`, `"line"`, `"col"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("encoded form missing %s:\n%s", want, s)
		}
	}
}

func Test_ASTJSON_PositionsSurvive(t *testing.T) {
	prog := mustParse(t, "var a = 1\nvar b = 2")
	data, _ := EncodeProgram(prog)
	decoded, err := DecodeProgram(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := decoded.Body[1].(*VarDecl)
	if b.Position.Line != 2 || b.Position.Col != 0 {
		t.Fatalf("position lost: %#v", b.Position)
	}
}

func Test_ASTJSON_Decode_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{{{`, "malformed program document"},
		{"wrong root", `{"type": "Expression", "body": []}`, "root type"},
		{"body not list", `{"type": "Program", "body": 5}`, "body is not a list"},
		{"unknown stmt", `{"type": "Program", "body": [{"type": "GotoStatement"}]}`, "unknown statement type"},
		{"missing discriminator", `{"type": "Program", "body": [{"line": 1}]}`, "missing type discriminator"},
		{"missing name", `{"type": "Program", "body": [{"type": "VariableDeclaration", "init": null}]}`, "missing name"},
		{"unknown expr", `{"type": "Program", "body": [{"type": "ExpressionStatement", "expression": {"type": "TernaryExpression"}}]}`, "unknown expression type"},
		{"bad literal", `{"type": "Program", "body": [{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": [1]}}]}`, "malformed Literal"},
	}
	for _, tc := range cases {
		_, err := DecodeProgram([]byte(tc.doc))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: want error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func Test_ASTJSON_HandWrittenDocument_Runs(t *testing.T) {
	// Documents do not have to come from EncodeProgram.
	doc := `{
  "type": "Program",
  "body": [
    {"type": "ExpressionStatement", "line": 1, "col": 0, "expression":
      {"type": "BinaryExpression", "operator": "+", "line": 1, "col": 2,
       "left":  {"type": "Literal", "value": 40, "line": 1, "col": 0},
       "right": {"type": "Literal", "value": 2, "line": 1, "col": 4}}}
  ]
}`
	prog, err := DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, err := NewInterpreter().EvalProgram(prog, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 42)
}
