package cimport

import "testing"

func TestBufferDirectives(t *testing.T) {
	var buf Buffer

	buf.Include("stdio.h")
	buf.Define("FOO", "1")
	buf.Define("BARE", "")
	buf.Undef("FOO")

	want := "#include <stdio.h>\n#define FOO 1\n#define BARE\n#undef FOO\n"
	if buf.String() != want {
		t.Errorf("buffer = %q, want %q", buf.String(), want)
	}
}

func TestStubAdapterFails(t *testing.T) {
	if _, err := (StubAdapter{}).Ingest("#include <stdio.h>\n"); err == nil {
		t.Errorf("stub adapter succeeded")
	}
}
