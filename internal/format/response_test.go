package format

import (
	"errors"
	"testing"
)

func TestParseResponse_OpenAI_ChoicesPath(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"the answer"}}]}`)
	got, err := ParseResponse(FormatOpenAI, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "the answer" {
		t.Errorf("text = %q; want %q", got, "the answer")
	}
}

func TestParseResponse_OpenAI_ResponseFallback(t *testing.T) {
	body := []byte(`{"response":"plain answer"}`)
	got, err := ParseResponse(FormatOpenAI, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "plain answer" {
		t.Errorf("text = %q; want %q", got, "plain answer")
	}
}

func TestParseResponse_OpenAI_EmptyStringIsAnswer(t *testing.T) {
	// An explicit empty content string is a successful (empty) answer, not
	// a malformed response.
	body := []byte(`{"choices":[{"message":{"content":""}}]}`)
	got, err := ParseResponse(FormatOpenAI, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "" {
		t.Errorf("text = %q; want empty string", got)
	}
}

func TestParseResponse_OpenAI_NoText(t *testing.T) {
	body := []byte(`{"choices":[]}`)
	_, err := ParseResponse(FormatOpenAI, body)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v; want ErrNoText", err)
	}
}

func TestParseResponse_Claude_ContentPath(t *testing.T) {
	body := []byte(`{"content":[{"type":"text","text":"claude says"}]}`)
	got, err := ParseResponse(FormatClaude, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "claude says" {
		t.Errorf("text = %q; want %q", got, "claude says")
	}
}

func TestParseResponse_Claude_ResponseFallback(t *testing.T) {
	body := []byte(`{"response":"fallback text"}`)
	got, err := ParseResponse(FormatClaude, body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "fallback text" {
		t.Errorf("text = %q; want %q", got, "fallback text")
	}
}

func TestParseResponse_Claude_NoText(t *testing.T) {
	body := []byte(`{"content":[{"type":"tool_use"}]}`)
	_, err := ParseResponse(FormatClaude, body)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v; want ErrNoText", err)
	}
}

func TestParseResponse_Custom_FieldOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"response wins over all", `{"response":"r","content":"c","text":"t","message":"m"}`, "r"},
		{"content wins over text", `{"content":"c","text":"t"}`, "c"},
		{"text wins over message", `{"text":"t","message":"m"}`, "t"},
		{"message alone", `{"message":"m"}`, "m"},
		{"empty string response still wins", `{"response":"","content":"c"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(FormatCustom, []byte(tt.body))
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if got != tt.want {
				t.Errorf("text = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestParseResponse_Custom_NullsAreSkipped(t *testing.T) {
	got, err := ParseResponse(FormatCustom, []byte(`{"response":null,"content":"c"}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if got != "c" {
		t.Errorf("text = %q; want %q", got, "c")
	}
}

func TestParseResponse_Custom_NoText(t *testing.T) {
	_, err := ParseResponse(FormatCustom, []byte(`{"status":"done"}`))
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v; want ErrNoText", err)
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	for _, f := range []APIFormat{FormatOpenAI, FormatClaude, FormatCustom} {
		if _, err := ParseResponse(f, []byte("not json")); err == nil {
			t.Errorf("format %s: expected error for invalid JSON", f)
		}
	}
}
