package yaml

import (
	"testing"
)

// FuzzPolicyParser tests the YAML parser against random/malformed inputs
// to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzPolicyParser -fuzztime=30s
func FuzzPolicyParser(f *testing.F) {
	// Seed corpus with valid YAML examples
	f.Add(defaultPolicy)

	f.Add([]byte(`package: proclist
base_url: https://dist.example/
artifacts:
  - url: linux/x64/proclist.so.gz
    os: linux
    arch: x64
    digest: sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855
toolchain:
  binary: node-gyp
`))

	// Seed with edge cases
	f.Add([]byte(``))                                         // Empty input
	f.Add([]byte(`package: ""` + "\n"))                       // Empty name
	f.Add([]byte(`{}`))                                       // Empty JSON-style YAML
	f.Add([]byte(`[]`))                                       // Array instead of object
	f.Add([]byte("package: x\n  bad"))                        // Invalid indentation
	f.Add([]byte("base_url: \"%zz\"\nartifacts: [{url: a}]")) // Bad base URL

	parser := NewPolicyParser()

	f.Fuzz(func(t *testing.T, data []byte) {
		policy, err := parser.Parse(data)
		if err != nil {
			return
		}
		if vErr := policy.Validate(); vErr != nil {
			t.Errorf("Parse() returned a policy that fails validation: %v", vErr)
		}
	})
}
