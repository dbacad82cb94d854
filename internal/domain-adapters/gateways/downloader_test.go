package gateways

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ochairo/proclist/internal/domain/entities"
)

var modulePayload = []byte("\x7fELF prebuilt proclist module")

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func newArtifactServer(t *testing.T) *httptest.Server {
	t.Helper()
	gz := gzipped(t, modulePayload)
	zst := zstded(t, modulePayload)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "proclist/") {
			http.Error(w, "bad user agent", http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/linux/x86/proclist.so":
			_, _ = w.Write(modulePayload)
		case "/linux/x86/proclist.so.gz":
			_, _ = w.Write(gz)
		case "/linux/x86/proclist.so.zst":
			_, _ = w.Write(zst)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloader_Fetch(t *testing.T) {
	server := newArtifactServer(t)
	d := NewDownloader(WithHTTPClient(server.Client()))

	for _, suffix := range []string{"", ".gz", ".zst"} {
		t.Run("suffix"+suffix, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "lib")
			artifact := entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so"+suffix, "linux", "")

			path, err := d.Fetch(context.Background(), artifact, dest)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if path != filepath.Join(dest, "proclist.so") {
				t.Errorf("Fetch() path = %q, want proclist.so in dest", path)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, modulePayload) {
				t.Errorf("written content = %q, want %q", got, modulePayload)
			}

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				if err != nil {
					t.Fatal(err)
				}
				if info.Mode().Perm() != ArtifactMode {
					t.Errorf("mode = %v, want %v", info.Mode().Perm(), ArtifactMode)
				}
			}
		})
	}
}

func TestDownloader_Fetch_HTTPError(t *testing.T) {
	server := newArtifactServer(t)
	d := NewDownloader(WithHTTPClient(server.Client()))
	dest := t.TempDir()

	_, err := d.Fetch(context.Background(), entities.NewArtifactDescriptor(server.URL+"/win/x86/proclist.so", "windows", ""), dest)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("Fetch() error = %v, want HTTP 404", err)
	}
	if _, statErr := os.Stat(filepath.Join(dest, "proclist.so")); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("failed fetch left a file behind: %v", statErr)
	}
}

func TestDownloader_Fetch_Digest(t *testing.T) {
	server := newArtifactServer(t)
	d := NewDownloader(WithHTTPClient(server.Client()))
	sum := sha256.Sum256(modulePayload)

	artifact := entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so", "linux", "")
	artifact.Digest = "sha256:" + hex.EncodeToString(sum[:])
	if _, err := d.Fetch(context.Background(), artifact, t.TempDir()); err != nil {
		t.Errorf("Fetch() with matching digest error = %v", err)
	}

	dest := t.TempDir()
	artifact.Digest = "sha256:" + strings.Repeat("ab", 32)
	if _, err := d.Fetch(context.Background(), artifact, dest); err == nil {
		t.Fatal("Fetch() should fail on digest mismatch")
	}
	if _, err := os.Stat(filepath.Join(dest, "proclist.so")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("mismatched artifact was written: %v", err)
	}
}

// A rejected artifact must leave a same-named file from another fetch untouched
func TestDownloader_Fetch_RejectedDigestKeepsExistingFile(t *testing.T) {
	server := newArtifactServer(t)
	d := NewDownloader(WithHTTPClient(server.Client()))
	dest := t.TempDir()

	good := entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so", "", "")
	path, err := d.Fetch(context.Background(), good, dest)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	bad := entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so.gz", "linux", "")
	bad.Digest = "blake3:" + strings.Repeat("cd", 32)
	if _, err := d.Fetch(context.Background(), bad, dest); err == nil {
		t.Fatal("Fetch() should fail on digest mismatch")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("existing module was removed: %v", err)
	}
	if !bytes.Equal(got, modulePayload) {
		t.Errorf("existing module content = %q, want %q", got, modulePayload)
	}
}

type stubSignatureVerifier struct {
	err   error
	calls []string
}

func (s *stubSignatureVerifier) VerifyGPGSignature(_ context.Context, data []byte, sigURL string) error {
	s.calls = append(s.calls, string(data)+"|"+sigURL)
	return s.err
}

func TestDownloader_Fetch_Signature(t *testing.T) {
	server := newArtifactServer(t)
	artifact := entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so", "linux", "")
	artifact.SignatureURL = server.URL + "/linux/x86/proclist.so.asc"

	if _, err := NewDownloader(WithHTTPClient(server.Client())).Fetch(context.Background(), artifact, t.TempDir()); err == nil {
		t.Error("Fetch() of a signed artifact without a verifier should fail")
	}

	sigs := &stubSignatureVerifier{}
	d := NewDownloader(WithHTTPClient(server.Client()), WithSignatureVerifier(sigs))
	if _, err := d.Fetch(context.Background(), artifact, t.TempDir()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(sigs.calls) != 1 || sigs.calls[0] != string(modulePayload)+"|"+artifact.SignatureURL {
		t.Errorf("signature verifier calls = %v", sigs.calls)
	}

	sigs.err = errors.New("bad signature")
	dest := t.TempDir()
	if _, err := d.Fetch(context.Background(), artifact, dest); err == nil {
		t.Error("Fetch() should fail when the signature does not verify")
	}
	if _, err := os.Stat(filepath.Join(dest, "proclist.so")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unverified artifact was written: %v", err)
	}
}

func TestDownloader_Fetch_Cancelled(t *testing.T) {
	server := newArtifactServer(t)
	d := NewDownloader(WithHTTPClient(server.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Fetch(ctx, entities.NewArtifactDescriptor(server.URL+"/linux/x86/proclist.so", "", ""), t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
