package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

const seedYAML = `
diseases:
  - code: P01
    name: Insomnia
    description: Difficulty falling or staying asleep.
    priority: 10
  - code: P02
    name: Sleep Apnea
    description: Breathing pauses during sleep.
    priority: 20
symptoms:
  - {code: G01, question: "Trouble falling asleep?"}
  - {code: G02, question: "Loud snoring?"}
rules:
  P01: [G01]
  P02: [G01, G02]
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed(writeSeedFile(t, seedYAML))
	if err != nil {
		t.Fatalf("LoadSeed returned error: %v", err)
	}

	if len(seed.Diseases) != 2 || len(seed.Symptoms) != 2 {
		t.Fatalf("unexpected seed sizes: %d diseases, %d symptoms", len(seed.Diseases), len(seed.Symptoms))
	}
	if seed.Diseases[0].Code != "P01" || seed.Diseases[0].Priority != 10 {
		t.Errorf("disease parsed wrong: %+v", seed.Diseases[0])
	}
	// Question prompts end with "?", which needs quoting in flow style.
	if seed.Symptoms[0].Question != "Trouble falling asleep?" {
		t.Errorf("question parsed wrong: %q", seed.Symptoms[0].Question)
	}
	if len(seed.Rules["P02"]) != 2 {
		t.Errorf("expected two rule symptoms for P02, got %v", seed.Rules["P02"])
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing seed file")
	}
}

func TestLoadSeed_InvalidYAML(t *testing.T) {
	if _, err := LoadSeed(writeSeedFile(t, "diseases: [}")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDefaultSeedIsConsistent(t *testing.T) {
	seed, err := LoadSeed("../../seed/knowledge.yaml")
	if err != nil {
		t.Fatalf("bundled seed failed to load: %v", err)
	}

	snap := seed.Snapshot()
	if err := snap.Integrity(); err != nil {
		t.Errorf("bundled seed has integrity violations: %v", err)
	}
	if got := len(snap.Candidates()); got != 5 {
		t.Errorf("expected 5 candidate diseases in the bundled seed, got %d", got)
	}
}

func TestSeed_Snapshot(t *testing.T) {
	seed, err := LoadSeed(writeSeedFile(t, seedYAML))
	if err != nil {
		t.Fatal(err)
	}

	snap := seed.Snapshot()
	if err := snap.Integrity(); err != nil {
		t.Fatalf("seed knowledge base must be consistent: %v", err)
	}
	if len(snap.Candidates()) != 2 {
		t.Errorf("expected both diseases as candidates, got %d", len(snap.Candidates()))
	}
}
