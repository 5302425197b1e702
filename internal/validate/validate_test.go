package validate

import (
	"strings"
	"testing"

	"github.com/wondertwin-ai/todo-service/internal/apperr"
)

type createBody struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updateBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return v
}

func TestCreateValid(t *testing.T) {
	v := newValidator(t)

	var got createBody
	if err := v.Decode(Create, []byte(`{"title":"ab","description":"more","extra":1}`), &got); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Title != "ab" || got.Description == nil || *got.Description != "more" {
		t.Errorf("unexpected decode: %+v", got)
	}
}

func TestCreateInvalid(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"title too short", `{"title":"a"}`, "Title must be at least 2 characters"},
		{"title missing", `{"description":"x"}`, "Title is required"},
		{"empty body", ``, "Title is required"},
		{"title not string", `{"title":42}`, "Title must be a string"},
		{"description not string", `{"title":"ok","description":false}`, "description:"},
		{"description null", `{"title":"ok","description":null}`, "description:"},
		{"array body", `[1,2]`, "body:"},
		{"malformed", `{"title":`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got createBody
			err := v.Decode(Create, []byte(tt.body), &got)
			if err == nil {
				t.Fatal("expected error")
			}
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	v := newValidator(t)
	var got createBody
	if err := v.Decode(Create, []byte(`{"title":"日本"}`), &got); err != nil {
		t.Errorf("two-character title rejected: %v", err)
	}
	if err := v.Decode(Create, []byte(`{"title":"日"}`), &got); err == nil {
		t.Error("one-character multi-byte title accepted")
	}
}

func TestUpdate(t *testing.T) {
	v := newValidator(t)

	var got updateBody
	if err := v.Decode(Update, []byte(`{"completed":true}`), &got); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Completed == nil || !*got.Completed || got.Title != nil || got.Description != nil {
		t.Errorf("unexpected decode: %+v", got)
	}

	var empty updateBody
	if err := v.Decode(Update, nil, &empty); err != nil {
		t.Errorf("empty update rejected: %v", err)
	}

	for _, body := range []string{`{"completed":"yes"}`, `{"title":"a"}`, `{"description":1}`} {
		var u updateBody
		if err := v.Decode(Update, []byte(body), &u); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("Decode(%s) error = %v, want validation error", body, err)
		}
	}
}

func TestUnknownSchema(t *testing.T) {
	v := newValidator(t)
	var x map[string]any
	err := v.Decode("delete", []byte(`{}`), &x)
	if err == nil || apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("expected internal error for unknown schema, got %v", err)
	}
}

func TestDecodeIgnoresCaseVariantKeys(t *testing.T) {
	v := newValidator(t)

	var created createBody
	if err := v.Decode(Create, []byte(`{"title":"ok","TITLE":"y"}`), &created); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if created.Title != "ok" {
		t.Errorf("Title = %q, want the validated \"ok\"", created.Title)
	}

	var updated updateBody
	if err := v.Decode(Update, []byte(`{"Title":"x","Completed":"nope","DESCRIPTION":"d"}`), &updated); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if updated.Title != nil || updated.Completed != nil || updated.Description != nil {
		t.Errorf("unchecked keys reached the decoded body: %+v", updated)
	}

	var missing createBody
	err := v.Decode(Create, []byte(`{"Title":"valid title"}`), &missing)
	if err == nil || !strings.Contains(err.Error(), "Title is required") {
		t.Errorf("expected required error for case-variant title, got %v", err)
	}
}
