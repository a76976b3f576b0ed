package jobform

import (
	"embed"
	"io/fs"
)

// SampleRepository names the repository served by SampleFixturesFS.
const SampleRepository = "samples"

//go:embed fixtures/samples/*.yaml
var embeddedFixtures embed.FS

// SampleFixturesFS exposes the bundled sample workspaces so the CLI and
// tests can run without a server.
//
// Typical use:
//
//	client := workspace.NewFSClient(jobform.SampleFixturesFS())
//	sess := session.New(client, jobform.SampleRepository)
func SampleFixturesFS() fs.FS {
	sub, err := fs.Sub(embeddedFixtures, "fixtures")
	if err != nil {
		return embeddedFixtures
	}
	return sub
}
