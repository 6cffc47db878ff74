package workspace

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/diag"
	"golang.org/x/tools/txtar"
)

// loadArchive parses a txtar fixture into filename->contents, one simulated
// workspace per archive, mirroring how editor integration tests stage a
// multi-file open-files snapshot without touching the real filesystem.
func loadArchive(t *testing.T, data string) map[string]string {
	t.Helper()
	ar := txtar.Parse([]byte(data))
	out := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		out[f.Name] = string(f.Data)
	}
	return out
}

const crossFileFixture = `
-- a.eproto --
package shared;
message Id {
  string value = 1;
}
-- b.eproto --
package shared;
message Wrapper {
  Id id = 1;
}
`

func TestUpdateFileResolvesAcrossOpenFiles(t *testing.T) {
	files := loadArchive(t, crossFileFixture)
	s := New()

	diags := s.UpdateFile("a.eproto", files["a.eproto"])
	for _, ds := range diags {
		for _, d := range ds {
			t.Fatalf("unexpected diagnostic after opening a.eproto: %+v", d)
		}
	}

	diags = s.UpdateFile("b.eproto", files["b.eproto"])
	for _, ds := range diags {
		for _, d := range ds {
			t.Fatalf("unexpected diagnostic after opening b.eproto: %+v", d)
		}
	}

	if len(s.Files()) != 2 {
		t.Fatalf("want 2 open files, got %+v", s.Files())
	}
}

const danglingReferenceFixture = `
-- only.eproto --
package shared;
message Wrapper {
  Ghost id = 1;
}
`

func TestCloseFileReRunsGlobalPassAndDropsDiagnostics(t *testing.T) {
	files := loadArchive(t, danglingReferenceFixture)
	s := New()

	diags := s.UpdateFile("only.eproto", files["only.eproto"])
	found := false
	for _, ds := range diags {
		for _, d := range ds {
			if d.Kind == diag.UnknownType {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("want an unknown-type diagnostic for Ghost, got %+v", diags)
	}

	diags = s.CloseFile("only.eproto")
	for _, ds := range diags {
		if len(ds) != 0 {
			t.Errorf("closing the only file should leave no diagnostics, got %+v", ds)
		}
	}
}
