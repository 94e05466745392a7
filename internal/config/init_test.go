package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/temirov/mdtree/internal/utils"
)

func TestInitializeConfigurationCreatesLocalFile(t *testing.T) {
	workingDirectory := t.TempDir()
	options := InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal}
	path, err := InitializeConfiguration(options)
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if path != expectedPath {
		t.Fatalf("expected path %s, got %s", expectedPath, path)
	}
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read config: %v", readErr)
	}
	if !strings.Contains(string(content), "start_anchor:") {
		t.Fatalf("unexpected configuration content: %s", string(content))
	}
}

func TestInitializedTemplateDecodesToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory}); err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	loaded, loadErr := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadErr != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", loadErr)
	}
	defaults := Default()
	if loaded.Document != defaults.Document {
		t.Fatalf("document section differs: %+v vs %+v", loaded.Document, defaults.Document)
	}
	if loaded.Links != defaults.Links {
		t.Fatalf("links section differs: %+v vs %+v", loaded.Links, defaults.Links)
	}
	if loaded.Watch != defaults.Watch {
		t.Fatalf("watch section differs: %+v vs %+v", loaded.Watch, defaults.Watch)
	}
	if loaded.Source.Root != defaults.Source.Root || loaded.Source.HiddenPrefix != defaults.Source.HiddenPrefix {
		t.Fatalf("source section differs: %+v vs %+v", loaded.Source, defaults.Source)
	}
	if !slices.Equal(loaded.Source.ExcludeSuffixes, defaults.Source.ExcludeSuffixes) {
		t.Fatalf("suffixes differ: %v vs %v", loaded.Source.ExcludeSuffixes, defaults.Source.ExcludeSuffixes)
	}
	if loaded.Companions.Pattern != defaults.Companions.Pattern || !slices.Equal(loaded.Companions.Exclude, defaults.Companions.Exclude) {
		t.Fatalf("companions section differs: %+v vs %+v", loaded.Companions, defaults.Companions)
	}
}

func TestInitializeConfigurationHonorsGlobalTarget(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	path, err := InitializeConfiguration(InitOptions{Target: InitTargetGlobal, Force: true})
	if err != nil {
		t.Fatalf("InitializeConfiguration error: %v", err)
	}
	if !strings.HasPrefix(path, homeDir) {
		t.Fatalf("expected configuration under home dir, got %s", path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected file to exist at %s: %v", path, statErr)
	}
}

func TestInitializeConfigurationPreventsOverwriteWithoutForce(t *testing.T) {
	workingDirectory := t.TempDir()
	path := filepath.Join(workingDirectory, utils.ConfigFileName)
	if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write seed config: %v", err)
	}
	_, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal, Force: false})
	if err == nil {
		t.Fatalf("expected error when configuration already exists")
	}
	if _, err := InitializeConfiguration(InitOptions{WorkingDirectory: workingDirectory, Target: InitTargetLocal, Force: true}); err != nil {
		t.Fatalf("expected forced overwrite to succeed: %v", err)
	}
}

func TestInitializeConfigurationRejectsUnknownTarget(t *testing.T) {
	if _, err := InitializeConfiguration(InitOptions{Target: InitTarget("remote")}); err == nil {
		t.Fatalf("expected error for unsupported target")
	}
}
