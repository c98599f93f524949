package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

const composerProfile = `---
name: Composer
description: Suggests chord progressions
model: llama3.1
---

You are a composition assistant. Suggest chord progressions that fit the
user's key and mood.
`

func TestParseProfile_FrontMatter(t *testing.T) {
	p, err := ParseProfile("composer", []byte(composerProfile))
	if err != nil {
		t.Fatalf("ParseProfile() failed: %v", err)
	}

	if p.Name != "Composer" {
		t.Errorf("Name = %q, want %q", p.Name, "Composer")
	}
	if p.Description != "Suggests chord progressions" {
		t.Errorf("Description = %q", p.Description)
	}
	if p.Model != "llama3.1" {
		t.Errorf("Model = %q, want %q", p.Model, "llama3.1")
	}
	if p.Prompt == "" || p.Prompt[:7] != "You are" {
		t.Errorf("Prompt = %q, want the body", p.Prompt)
	}
}

func TestParseProfile_NoFrontMatter(t *testing.T) {
	p, err := ParseProfile("plain", []byte("Just a prompt.\n"))
	if err != nil {
		t.Fatalf("ParseProfile() failed: %v", err)
	}
	if p.Name != "plain" {
		t.Errorf("Name = %q, want the id as default", p.Name)
	}
	if p.Prompt != "Just a prompt." {
		t.Errorf("Prompt = %q", p.Prompt)
	}
}

func TestParseProfile_UnterminatedFrontMatter(t *testing.T) {
	_, err := ParseProfile("broken", []byte("---\nname: x\nno end"))
	if err == nil {
		t.Error("ParseProfile() accepted unterminated front matter")
	}
}

func TestProfile_RenderRoundTrip(t *testing.T) {
	p, err := ParseProfile("composer", []byte(composerProfile))
	if err != nil {
		t.Fatalf("ParseProfile() failed: %v", err)
	}

	data, err := p.Render()
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	again, err := ParseProfile("composer", data)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}

	if *again != *p {
		t.Errorf("round trip changed the profile:\n got %+v\nwant %+v", again, p)
	}
}

func TestStore_LoadListGet(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "composer.md", composerProfile)
	writeProfile(t, dir, "theorist.md", "---\nname: Theorist\n---\n\nExplain harmony.\n")
	writeProfile(t, dir, ".hidden.md", "ignored")
	writeProfile(t, dir, "notes.txt", "ignored")

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	infos := store.List()
	if len(infos) != 2 {
		t.Fatalf("List() returned %d profiles, want 2", len(infos))
	}
	if infos[0].ID != "composer" || infos[1].ID != "theorist" {
		t.Errorf("List() ids = [%s %s], want sorted [composer theorist]", infos[0].ID, infos[1].ID)
	}

	prompt, err := store.GetPrompt("theorist")
	if err != nil {
		t.Fatalf("GetPrompt() failed: %v", err)
	}
	if prompt != "Explain harmony." {
		t.Errorf("GetPrompt() = %q", prompt)
	}

	_, err = store.Get("missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Get(missing) error = %v, want *NotFoundError", err)
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	err = store.Save("arranger", &Profile{
		Name:        "Arranger",
		Description: "Voicing suggestions",
		Prompt:      "Suggest voicings.",
	})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// The save must be visible both in memory and from a fresh load.
	if _, err := store.Get("arranger"); err != nil {
		t.Errorf("Get() after Save failed: %v", err)
	}

	fresh, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() reload failed: %v", err)
	}
	p, err := fresh.Get("arranger")
	if err != nil {
		t.Fatalf("Get() from fresh store failed: %v", err)
	}
	if p.Prompt != "Suggest voicings." {
		t.Errorf("Prompt = %q after disk round trip", p.Prompt)
	}
}

func TestStore_SaveRejectsBadID(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	for _, id := range []string{"", "../escape", ".hidden", "a/b"} {
		if err := store.Save(id, &Profile{Prompt: "x"}); err == nil {
			t.Errorf("Save(%q) accepted an invalid id", id)
		}
	}
}

func TestStore_ReloadSkipsBrokenProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "good.md", "A prompt.")
	writeProfile(t, dir, "broken.md", "---\nname: [unclosed\n---\nbody")

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	if len(store.List()) != 1 {
		t.Errorf("List() = %d profiles, want the broken one skipped", len(store.List()))
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	watcher, err := NewWatcher(store)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watcher.Watch(ctx)
	}()
	defer watcher.Stop()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeProfile(t, dir, "live.md", "Live-added prompt.")

	deadline := time.After(3 * time.Second)
	for {
		if _, err := store.Get("live"); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("store never picked up the new profile")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-watchDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}
}
