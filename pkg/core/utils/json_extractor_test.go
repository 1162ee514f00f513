package utils

import "testing"

type scorePayload struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"fenced json", "Here you go:\n```json\n{\"score\": 80}\n```", `{"score": 80}`},
		{"fenced bare", "```\n{\"score\": 80}\n```", `{"score": 80}`},
		{"embedded object", `The result is {"score": 80, "issues": []} as requested.`, `{"score": 80, "issues": []}`},
		{"brace in string", `{"note": "use } carefully", "score": 1}`, `{"note": "use } carefully", "score": 1}`},
		{"plain", `{"score": 80}`, `{"score": 80}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.raw); got != tc.want {
				t.Errorf("ExtractJSON = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSmartParse_SalvageChain(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"clean", `{"score": 80, "issues": ["banding"]}`},
		{"single quotes", `{'score': 80, 'issues': ['banding']}`},
		{"trailing comma", `{"score": 80, "issues": ["banding"],}`},
		{"unquoted keys", `{score: 80, issues: ["banding"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p scorePayload
			if err := SmartParse(tc.input, &p); err != nil {
				t.Fatalf("SmartParse: %v", err)
			}
			if p.Score != 80 || len(p.Issues) != 1 {
				t.Errorf("parsed %+v", p)
			}
		})
	}
}

func TestParseInto_ProseFails(t *testing.T) {
	var p scorePayload
	if err := ParseInto("the video looks fine to me", &p); err == nil {
		t.Fatal("prose without JSON must fail")
	}
}
