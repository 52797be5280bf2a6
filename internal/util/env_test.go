package util

import (
	"reflect"
	"testing"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SG_TEST_INT", "42")
	if got := GetEnvInt("SG_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	t.Setenv("SG_TEST_INT", "forty")
	if got := GetEnvInt("SG_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}

	if got := GetEnvInt("SG_TEST_INT_UNSET", 3); got != 3 {
		t.Fatalf("expected default 3, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("SG_TEST_BOOL", "true")
	if !GetEnvBool("SG_TEST_BOOL", false) {
		t.Fatal("expected true")
	}

	t.Setenv("SG_TEST_BOOL", "yes")
	if GetEnvBool("SG_TEST_BOOL", false) {
		t.Fatal("expected default for unrecognised value")
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("SG_TEST_STR", "")
	if got := GetEnvString("SG_TEST_STR", "fallback"); got != "" {
		t.Fatalf("expected explicit empty value, got %q", got)
	}
	if got := GetEnvString("SG_TEST_STR_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("SG_TEST_LIST", " .md, .txt ,,")
	got := GetEnvList("SG_TEST_LIST", nil)
	if !reflect.DeepEqual(got, []string{".md", ".txt"}) {
		t.Fatalf("unexpected list %v", got)
	}

	t.Setenv("SG_TEST_LIST", " , ")
	got = GetEnvList("SG_TEST_LIST", []string{".md"})
	if !reflect.DeepEqual(got, []string{".md"}) {
		t.Fatalf("expected default, got %v", got)
	}
}
