package collide

import "testing"

func recordWith(own Kind, counts map[Kind]int) Record {
	r := NewRecord(1, own)
	for slot, n := range counts {
		for range n {
			r, _ = NewRecord(1, own).inherit(r, own, slot)
		}
	}
	return r
}

func TestStringify(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		rec    Record
		suffix string
		want   string
	}{
		{"clean member", "Value", recordWith(MemberName, nil), "Base", "Value"},
		{"super member", "Value", recordWith(MemberName, map[Kind]int{SuperMemberName: 1}), "Base", "Value_Base"},
		{"second member", "Value", recordWith(MemberName, map[Kind]int{MemberName: 1}), "Base", "Value_0"},
		{"third member", "Value", recordWith(MemberName, map[Kind]int{MemberName: 2}), "Base", "Value_1"},
		{"super then own", "Value", recordWith(MemberName, map[Kind]int{SuperMemberName: 1, MemberName: 1}), "Base", "Value_Base_0"},
		{"member ignores function hits", "Value", recordWith(MemberName, map[Kind]int{FunctionName: 3}), "Base", "Value"},
		{"function over member", "Value", recordWith(FunctionName, map[Kind]int{MemberName: 1}), "", "Func_Value"},
		{"function over super member", "Value", recordWith(FunctionName, map[Kind]int{SuperMemberName: 1}), "", "Func_Value"},
		{"overload", "Run", recordWith(FunctionName, map[Kind]int{FunctionName: 2}), "", "Run_1"},
		{"function ignores super function", "Run", recordWith(FunctionName, map[Kind]int{SuperFunctionName: 1}), "", "Run"},
		{"param over member", "Value", recordWith(ParameterName, map[Kind]int{MemberName: 1}), "", "Param_Value"},
		{"param over super function", "Run", recordWith(ParameterName, map[Kind]int{SuperFunctionName: 1}), "", "Param_Run"},
		{"repeated param", "a", recordWith(ParameterName, map[Kind]int{ParameterName: 1}), "", "a_0"},
		{"param both", "int", recordWith(ParameterName, map[Kind]int{SuperMemberName: 1, ParameterName: 2}), "", "Param_int_1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Stringify(c.raw, c.rec, c.suffix); got != c.want {
				t.Fatalf("Stringify(%q, %s) = %q, want %q", c.raw, c.rec.DebugString(), got, c.want)
			}
		})
	}
}

func TestParseSuffixPolicy(t *testing.T) {
	for in, want := range map[string]SuffixPolicy{"": SuffixAncestor, "ancestor": SuffixAncestor, "owner": SuffixOwner} {
		got, err := ParseSuffixPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseSuffixPolicy(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseSuffixPolicy("derived"); err == nil {
		t.Fatalf("expected error")
	}
}
