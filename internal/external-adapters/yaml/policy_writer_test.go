package yaml

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/proclist/internal/domain/entities"
)

func TestMarshalArtifacts_ParsesBack(t *testing.T) {
	renamed := entities.NewArtifactDescriptor("https://dist.example/win/x86/proclist.so", "win32", "x86")
	renamed.FileName = "proclist-win.so"
	digested := entities.NewArtifactDescriptor("https://dist.example/linux/x86/proclist.so.zst", "linux", "")
	digested.Digest = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	set := entities.ArtifactSet{digested, renamed}

	out, err := MarshalArtifacts(set)
	if err != nil {
		t.Fatalf("MarshalArtifacts() error = %v", err)
	}

	policy, err := NewPolicyParser().Parse(append([]byte("package: proclist\ntoolchain:\n  binary: make\n"), out...))
	if err != nil {
		t.Fatalf("Parse() of marshaled artifacts error = %v\n%s", err, out)
	}
	if diff := cmp.Diff(set, policy.Artifacts); diff != "" {
		t.Errorf("artifacts changed through YAML (-want +got):\n%s", diff)
	}
}
