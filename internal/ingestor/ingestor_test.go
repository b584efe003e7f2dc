package ingestor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `apiVersion: v1
kind: Pod
metadata:
  name: test-pod
spec:
  containers:
    - name: app
      image: nginx:1.25
`

func writeTempManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp manifest: %v", err)
	}
	return path
}

func TestResolverFactory(t *testing.T) {
	yamlPath := writeTempManifest(t, "pod.yaml", testManifest)

	tests := []struct {
		name     string
		source   string
		wantType any
		wantErr  bool
	}{
		{"stdin", "-", &StdinResolver{}, false},
		{"http url", "http://example.com/pod.yaml", &RemoteYAMLResolver{}, false},
		{"https url", "https://example.com/pod.yaml", &RemoteYAMLResolver{}, false},
		{"local yaml", yamlPath, &LocalYAMLResolver{}, false},
		{"empty", "", nil, true},
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml"), nil, true},
		{"wrong extension", writeTempManifest(t, "pod.txt", testManifest), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := ResolverFactory(tt.source, nil)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ResolverFactory(%q) error = nil, want error", tt.source)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolverFactory(%q): %v", tt.source, err)
			}
			switch tt.wantType.(type) {
			case *StdinResolver:
				if _, ok := resolver.(*StdinResolver); !ok {
					t.Errorf("resolver type = %T, want StdinResolver", resolver)
				}
			case *RemoteYAMLResolver:
				if _, ok := resolver.(*RemoteYAMLResolver); !ok {
					t.Errorf("resolver type = %T, want RemoteYAMLResolver", resolver)
				}
			case *LocalYAMLResolver:
				if _, ok := resolver.(*LocalYAMLResolver); !ok {
					t.Errorf("resolver type = %T, want LocalYAMLResolver", resolver)
				}
			}
		})
	}
}

func TestReadManifestLocal(t *testing.T) {
	path := writeTempManifest(t, "pod.yaml", testManifest)

	content, metadata, err := ReadManifest(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if content != testManifest {
		t.Errorf("content = %q", content)
	}
	if metadata.Type != SourceTypeFile {
		t.Errorf("metadata.Type = %v, want file", metadata.Type)
	}
	if metadata.Size != int64(len(testManifest)) {
		t.Errorf("metadata.Size = %d, want %d", metadata.Size, len(testManifest))
	}
}

func TestReadManifestLocalValidation(t *testing.T) {
	path := writeTempManifest(t, "broken.yaml", "{{not yaml")

	if _, _, err := ReadManifest(context.Background(), path, &Options{ValidateYAML: true}); err == nil {
		t.Error("ReadManifest with validation error = nil, want YAML error")
	}
	// Without validation the raw content comes through
	if _, _, err := ReadManifest(context.Background(), path, nil); err != nil {
		t.Errorf("ReadManifest without validation: %v", err)
	}
}

func TestReadManifestRemote(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(testManifest))
	}))
	defer srv.Close()

	content, metadata, err := ReadManifest(context.Background(), srv.URL+"/pod.yaml", nil)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if content != testManifest {
		t.Errorf("content = %q", content)
	}
	if metadata.Type != SourceTypeRemote {
		t.Errorf("metadata.Type = %v, want remote", metadata.Type)
	}
	if !strings.Contains(gotAccept, "yaml") {
		t.Errorf("Accept header = %q", gotAccept)
	}
}

func TestReadManifestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, _, err := ReadManifest(context.Background(), srv.URL+"/missing.yaml", nil); err == nil {
		t.Error("ReadManifest on 404 error = nil, want status error")
	}
}

func TestRemoteResolverInvalidURL(t *testing.T) {
	if _, err := NewRemoteYAMLResolver("http://", nil, nil); err == nil {
		t.Error("NewRemoteYAMLResolver on hostless URL error = nil")
	}
}

func TestStdinResolver(t *testing.T) {
	r := &StdinResolver{input: strings.NewReader(testManifest)}

	reader, metadata, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer reader.Close()

	if metadata.Type != SourceTypeStdin || metadata.Path != "-" {
		t.Errorf("metadata = %+v", metadata)
	}

	empty := &StdinResolver{input: strings.NewReader("")}
	if _, _, err := empty.Resolve(context.Background()); err == nil {
		t.Error("Resolve on empty stdin error = nil")
	}
}

func TestSourceTypeString(t *testing.T) {
	tests := []struct {
		st   SourceType
		want string
	}{
		{SourceTypeFile, "file"},
		{SourceTypeRemote, "remote"},
		{SourceTypeStdin, "stdin"},
		{SourceType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("SourceType(%d).String() = %q, want %q", tt.st, got, tt.want)
		}
	}
}
