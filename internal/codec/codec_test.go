package codec

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

var roundTripCases = []string{
	"",
	"a",
	"ab",
	"abc",
	"<div id=\"x\">hello</div>",
	"body { color: #fff; }\r\n",
	"line one\nline two\r\nline three\r",
	"zażółć gęślą jaźń",
	"日本語のテキスト",
	"emoji 🎉🚀 and \u0000 nul",
	"\ufeffbom",
	strings.Repeat("var x = 1;\n", 500),
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range roundTripCases {
		enc := Encode(s)
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(Encode(%q)) error = %v", s, err)
		}
		if got != s {
			t.Errorf("Decode(Encode(%q)) = %q", s, got)
		}
	}
}

func TestEncodeUsesAlphabetOnly(t *testing.T) {
	for _, s := range roundTripCases {
		for _, r := range Encode(s) {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("Encode(%q) emitted %q outside alphabet", s, r)
			}
		}
	}
}

func TestEncodeOfDecodeIsStable(t *testing.T) {
	encoded := []string{"", "YQ==", "YWI=", "YWJj", "5pel5pys6Kqe"}
	for _, e := range encoded {
		text, err := Decode(e)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", e, err)
		}
		if got := Encode(text); got != e {
			t.Errorf("Encode(Decode(%q)) = %q", e, got)
		}
	}
}

func TestDecodeIgnoresForeignCharacters(t *testing.T) {
	enc := Encode("hello, world")
	noisy := " " + enc[:4] + "\r\n" + enc[4:8] + "\t" + enc[8:] + " \n"

	got, err := Decode(noisy)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "hello, world" {
		t.Errorf("Decode() = %q, want %q", got, "hello, world")
	}
}

func TestDecodeUnpadded(t *testing.T) {
	got, err := Decode("YQ")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "a" {
		t.Errorf("Decode(\"YQ\") = %q, want \"a\"", got)
	}
}

func TestDecodeJoinedPaddedGroups(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two padded encodings", Encode("A") + Encode("BC"), "ABC"},
		{"three padded encodings", Encode("ab") + Encode("c") + Encode("de"), "abcde"},
		{"noise between groups", Encode("x") + "\r\n" + Encode("yz"), "xyz"},
		{"pad only quartet", "====" + Encode("ok"), "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"dangling symbol", "YWJjZ", ErrMalformed},
		{"lone symbol before pad", "Y===", ErrMalformed},
		{"invalid utf8", Encode("\xff\xfe"), ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestEncodeDecodeFields(t *testing.T) {
	values := url.Values{
		"code_html": {"<p>ü</p>"},
		"code_css":  {"p{}"},
		"title":     {"untouched"},
	}

	plain := EncodeFields(values, "code_html", "code_css", "code_js")

	if len(plain) != 2 {
		t.Fatalf("EncodeFields() returned %d plain values, want 2", len(plain))
	}
	if values.Get("code_html") == "<p>ü</p>" {
		t.Error("code_html was not encoded")
	}
	if values.Get("title") != "untouched" {
		t.Error("title should not be encoded")
	}

	if err := DecodeFields(values, "code_html", "code_css", "code_js"); err != nil {
		t.Fatalf("DecodeFields() error = %v", err)
	}
	if values.Get("code_html") != "<p>ü</p>" || values.Get("code_css") != "p{}" {
		t.Errorf("fields not restored: %v", values)
	}
}

func TestDecodeFieldsReportsField(t *testing.T) {
	values := url.Values{"code_js": {"A"}}
	err := DecodeFields(values, "code_js")

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("DecodeFields() error = %v, want *FieldError", err)
	}
	if fe.Field != "code_js" {
		t.Errorf("FieldError.Field = %q", fe.Field)
	}
}
