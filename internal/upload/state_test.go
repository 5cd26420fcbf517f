package upload

import "testing"

// TestStateDB verifies the uploaded flag flips only for the exact
// id/hash pair and survives a reopen.
func TestStateDB(t *testing.T) {
	dir := t.TempDir()
	state, err := OpenStateDB(dir)
	if err != nil {
		t.Fatal(err)
	}

	if up, _ := state.IsUploaded("w1", "h1"); up {
		t.Error("fresh db reports uploaded")
	}

	if err := state.MarkUploaded("w1", "h1"); err != nil {
		t.Fatal(err)
	}
	if up, _ := state.IsUploaded("w1", "h1"); !up {
		t.Error("not uploaded after mark")
	}
	// A changed document hash means the workout needs re-sending.
	if up, _ := state.IsUploaded("w1", "h2"); up {
		t.Error("different hash reports uploaded")
	}
	if up, _ := state.IsUploaded("w2", "h1"); up {
		t.Error("different workout reports uploaded")
	}

	// Re-marking with a new hash replaces the row.
	if err := state.MarkUploaded("w1", "h2"); err != nil {
		t.Fatal(err)
	}
	if up, _ := state.IsUploaded("w1", "h2"); !up {
		t.Error("new hash not recorded")
	}

	if err := state.Close(); err != nil {
		t.Fatal(err)
	}

	// State persists across reopen.
	state2, err := OpenStateDB(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer state2.Close()
	if up, _ := state2.IsUploaded("w1", "h2"); !up {
		t.Error("state lost across reopen")
	}
}

// TestHashDocument verifies stability and sensitivity of the document hash.
func TestHashDocument(t *testing.T) {
	a := HashDocument([]byte(`{"name":"swim"}`))
	b := HashDocument([]byte(`{"name":"swim"}`))
	c := HashDocument([]byte(`{"name":"run"}`))

	if a != b {
		t.Error("same bytes hashed differently")
	}
	if a == c {
		t.Error("different bytes share a hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
