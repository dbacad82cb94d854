package yaml

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/proclist/internal/domain/entities"
)

// MarshalArtifacts renders descriptors as the artifacts section of a policy file
func MarshalArtifacts(set entities.ArtifactSet) ([]byte, error) {
	doc := struct {
		Artifacts []yamlArtifact `yaml:"artifacts"`
	}{Artifacts: make([]yamlArtifact, 0, len(set))}

	for _, d := range set {
		ya := yamlArtifact{
			URL:          d.SourceURL,
			OS:           d.TargetOS,
			Arch:         d.TargetArch,
			Digest:       d.Digest,
			SignatureURL: d.SignatureURL,
		}
		if d.FileName != entities.FileNameFromURL(d.SourceURL) {
			ya.Name = d.FileName
		}
		doc.Artifacts = append(doc.Artifacts, ya)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifacts: %w", err)
	}
	return out, nil
}
