package envelope

import (
	"reflect"
	"testing"
)

func mustParse(t *testing.T, raw string) Value {
	t.Helper()
	v, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", raw, err)
	}
	return v
}

func TestExtract_TopLevelMarker(t *testing.T) {
	frames := []string{
		`{"market":"0xabc","asset_id":"1","bids":[{"price":"0.4","size":"1"}],"asks":[]}`,
		`{"bids":[]}`,
		`{"asks":null}`,
		`{"market":"0xabc","payload":{"bids":[{"price":"0.1","size":"1"}]}}`,
	}

	for _, raw := range frames {
		t.Run(raw, func(t *testing.T) {
			v := mustParse(t, raw)
			got, ok := Extract(v)
			if !ok {
				t.Fatal("Extract() found nothing")
			}
			if !reflect.DeepEqual(Value(got), v) {
				t.Errorf("Extract() = %v, want the top-level object unchanged", got)
			}
		})
	}
}

func TestExtract_NestedPayload(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		asset string
	}{
		{
			name:  "one level",
			raw:   `{"type":"book","payload":{"asset_id":"7","bids":[]}}`,
			asset: "7",
		},
		{
			name:  "three levels",
			raw:   `{"payload":{"payload":{"payload":{"asset_id":"8","asks":[]}}}}`,
			asset: "8",
		},
		{
			name:  "payload is a sequence",
			raw:   `{"payload":[1,"x",{"foo":1},{"asset_id":"9","market":"m"}]}`,
			asset: "9",
		},
		{
			name:  "sequence of wrappers",
			raw:   `[{"payload":{}},{"payload":{"asset_id":"10","bids":[]}}]`,
			asset: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(mustParse(t, tt.raw))
			if !ok {
				t.Fatal("Extract() found nothing")
			}
			if id, _ := got.Text("asset_id"); id != tt.asset {
				t.Errorf("asset_id = %q, want %q", id, tt.asset)
			}
		})
	}
}

func TestExtract_SequenceReturnsFirstMatch(t *testing.T) {
	got, ok := Extract(mustParse(t, `[{"asset_id":"a","bids":[]},{"asset_id":"b","bids":[]}]`))
	if !ok {
		t.Fatal("Extract() found nothing")
	}
	if id, _ := got.Text("asset_id"); id != "a" {
		t.Errorf("asset_id = %q, want a", id)
	}
}

func TestExtract_Absent(t *testing.T) {
	frames := []string{
		`{}`,
		`{"type":"ping"}`,
		`{"payload":null}`,
		`{"payload":""}`,
		`{"payload":{}}`,
		`{"payload":[]}`,
		`{"payload":0}`,
		`{"payload":false}`,
		`{"payload":"bids"}`,
		`{"payload":{"payload":{"nothing":"here"}}}`,
		`[]`,
		`[1,2,3]`,
		`["bids","asks"]`,
		`[[{"bids":[]}]]`,
		`"PONG"`,
		`42`,
		`true`,
		`null`,
	}

	for _, raw := range frames {
		t.Run(raw, func(t *testing.T) {
			got, ok := Extract(mustParse(t, raw))
			if ok || got != nil {
				t.Errorf("Extract() = (%v, %v), want absent", got, ok)
			}
		})
	}
}

func TestExtract_NilValue(t *testing.T) {
	if got, ok := Extract(nil); ok || got != nil {
		t.Errorf("Extract(nil) = (%v, %v), want absent", got, ok)
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "single object",
			raw:  `{"asset_id":"1","bids":[]}`,
			want: []string{"1"},
		},
		{
			name: "batch of books",
			raw:  `[{"asset_id":"1","bids":[]},"noise",{"type":"x"},{"payload":{"asset_id":"2","asks":[]}}]`,
			want: []string{"1", "2"},
		},
		{
			name: "wrapped batch takes first",
			raw:  `{"payload":[{"asset_id":"1","bids":[]},{"asset_id":"2","bids":[]}]}`,
			want: []string{"1"},
		},
		{
			name: "nothing",
			raw:  `{"event":"heartbeat"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(mustParse(t, tt.raw))
			var ids []string
			for _, p := range got {
				id, _ := p.Text("asset_id")
				ids = append(ids, id)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Candidates() ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{``, `{`, `PONG`, `{"a":1} trailing`, `[1,]`} {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("Parse(%q) error = nil, want error", raw)
		}
	}
}

func TestObjectAccessors(t *testing.T) {
	v := mustParse(t, `{"asset_id":"","id":12345678901234567890,"market":"m","bids":{"not":"a list"},"asks":[]}`)
	obj, ok := v.(Object)
	if !ok {
		t.Fatalf("Parse() = %T, want Object", v)
	}

	if _, ok := obj.Text("asset_id"); ok {
		t.Error("empty string reported as text")
	}
	if id, ok := obj.FirstText("asset_id", "id"); !ok || id != "12345678901234567890" {
		t.Errorf("FirstText() = (%q, %v), want the number's literal text", id, ok)
	}
	if _, ok := obj.Sequence("bids"); ok {
		t.Error("object reported as a sequence")
	}
	if asks, ok := obj.Sequence("asks"); !ok || len(asks) != 0 {
		t.Errorf("Sequence(asks) = (%v, %v), want empty sequence", asks, ok)
	}
	if !obj.Has("market") || obj.Has("payload") {
		t.Error("Has() reports wrong presence")
	}
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{
		"n":   1.5,
		"s":   "x",
		"b":   true,
		"nil": nil,
		"seq": []any{"a"},
		"odd": struct{}{},
	})
	obj, ok := v.(Object)
	if !ok {
		t.Fatalf("FromAny() = %T, want Object", v)
	}

	if n, ok := obj.Text("n"); !ok || n != "1.5" {
		t.Errorf("Text(n) = (%q, %v), want 1.5", n, ok)
	}
	if !obj["nil"].(Scalar).IsNull() || !obj["odd"].(Scalar).IsNull() {
		t.Error("nil and unknown values should be null scalars")
	}
	if _, ok := obj.Sequence("seq"); !ok {
		t.Error("Sequence(seq) not found")
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "keys sorted and whitespace removed",
			raw:  `{ "size":"2", "price":"0.5" }`,
			want: `{"price":"0.5","size":"2"}`,
		},
		{
			name: "number literals kept",
			raw:  `[0.500, 1e3, -0, 12345678901234567890]`,
			want: `[0.500,1e3,-0,12345678901234567890]`,
		},
		{
			name: "mixed sequence",
			raw:  `[{"price":"0.5"},7,"x",null,true,[]]`,
			want: `[{"price":"0.5"},7,"x",null,true,[]]`,
		},
		{
			name: "html left alone",
			raw:  `{"note":"<a&b>"}`,
			want: `{"note":"<a&b>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(mustParse(t, tt.raw))
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncode_BadNumber(t *testing.T) {
	if _, err := Encode(Sequence{Number("not-a-number")}); err == nil {
		t.Error("Encode() error = nil, want invalid number error")
	}
}
