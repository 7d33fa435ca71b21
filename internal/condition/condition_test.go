package condition

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		want   *Condition
		wantOK bool
	}{
		{name: "empty", key: "", want: nil, wantOK: false},
		{name: "when only", key: "when:a", want: &Condition{When: "a"}, wantOK: true},
		{name: "language only", key: "languageId:go", want: &Condition{LanguageID: "go"}, wantOK: true},
		{name: "both", key: "when:a;languageId:go", want: &Condition{When: "a", LanguageID: "go"}, wantOK: true},
		{name: "reversed order", key: "languageId:go;when:a", want: &Condition{When: "a", LanguageID: "go"}, wantOK: true},
		{name: "unknown property", key: "foo:bar", want: nil, wantOK: false},
		{name: "unknown with known", key: "foo:bar;when:x", want: &Condition{When: "x"}, wantOK: true},
		{name: "no value", key: "when:", want: nil, wantOK: false},
		{name: "plain key", key: "m", want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		stored *Condition
		ctx    *Condition
		want   bool
	}{
		{
			name:   "when matches with extra context",
			stored: &Condition{When: "a"},
			ctx:    &Condition{When: "a", LanguageID: "ts"},
			want:   true,
		},
		{
			name:   "when differs",
			stored: &Condition{When: "a"},
			ctx:    &Condition{When: "b"},
			want:   false,
		},
		{
			name:   "empty stored is absent",
			stored: &Condition{},
			ctx:    &Condition{When: "a"},
			want:   false,
		},
		{
			name:   "both nil",
			stored: nil,
			ctx:    nil,
			want:   false,
		},
		{
			name:   "nil context",
			stored: &Condition{LanguageID: "go"},
			ctx:    nil,
			want:   false,
		},
		{
			name:   "language match",
			stored: &Condition{LanguageID: "markdown"},
			ctx:    &Condition{LanguageID: "markdown"},
			want:   true,
		},
		{
			name:   "both properties one differs",
			stored: &Condition{When: "a", LanguageID: "go"},
			ctx:    &Condition{When: "a", LanguageID: "python"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.stored, tt.ctx); got != tt.want {
				t.Errorf("Match(%+v, %+v) = %v, want %v", tt.stored, tt.ctx, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) should be true")
	}
	if !Equal(nil, &Condition{}) {
		t.Error("empty condition should equal absent condition")
	}
	if Equal(&Condition{When: "a"}, nil) {
		t.Error("present condition should not equal absent condition")
	}
	if !Equal(&Condition{When: "a", LanguageID: "go"}, &Condition{When: "a", LanguageID: "go"}) {
		t.Error("identical conditions should be equal")
	}
	if Equal(&Condition{When: "a"}, &Condition{When: "a", LanguageID: "go"}) {
		t.Error("conditions with different property sets should differ")
	}
}

func TestKeyEqual(t *testing.T) {
	if !KeyEqual("when:a;languageId:go", "languageId:go;when:a") {
		t.Error("property order should not matter")
	}
	if !KeyEqual("", "") {
		t.Error("two else keys should be equal")
	}
	if KeyEqual("languageId:go", "languageId:python") {
		t.Error("different languages should not be equal")
	}
}

func TestMatchKey(t *testing.T) {
	ctx := &Condition{LanguageID: "markdown"}
	if !MatchKey("languageId:markdown", ctx) {
		t.Error("MatchKey should match language")
	}
	if MatchKey("", ctx) {
		t.Error("MatchKey with empty key should not match")
	}
}

func TestString(t *testing.T) {
	c := &Condition{When: "a", LanguageID: "go"}
	if got := c.String(); got != "when:a;languageId:go" {
		t.Errorf("String() = %q", got)
	}
	var nilCond *Condition
	if got := nilCond.String(); got != "" {
		t.Errorf("nil String() = %q, want empty", got)
	}
	round, ok := Parse(c.String())
	if !ok || !Equal(round, c) {
		t.Errorf("Parse(String()) = %+v, want %+v", round, c)
	}
}
