package olang

import (
	"encoding/json"
	"testing"
)

func Test_Trace_Event_JSON_Fields(t *testing.T) {
	rec := &Recorder{}
	if _, err := Evaluate(MustParse("let k = 4"), WithTracer(rec)); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(rec.Events[1])
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"seq", "kind", "pos", "scope", "code", "value"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing %q in %s", key, b)
		}
	}
	if got["kind"] != "VariableDeclaration" || got["code"] != "let k = 4" || got["value"] != 4.0 {
		t.Fatalf("event = %s", b)
	}
	scope := got["scope"].([]any)
	if k := scope[0].(map[string]any)["k"]; k != 4.0 {
		t.Fatalf("scope = %v", scope)
	}
}
