package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsonvault/pkg/core"
)

func openRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	repo, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.WaitReady(context.Background()))
	return repo
}

func dbPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "db.json")
}

func ids(docs []core.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}

func TestOpen(t *testing.T) {
	t.Run("Bootstraps Missing File", func(t *testing.T) {
		path := dbPath(t)
		repo := openRepo(t, Config{Path: path})

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"docs":[]}`, string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultFileMode, info.Mode().Perm())

		select {
		case <-repo.Ready():
		default:
			t.Fatal("new database should be ready immediately")
		}
	})

	t.Run("Bootstraps Encrypted File", func(t *testing.T) {
		path := dbPath(t)
		openRepo(t, Config{Path: path, Encrypted: true, Key: testKey})

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Regexp(t, payloadFormat, string(data))

		reopened := openRepo(t, Config{Path: path, Encrypted: true, Key: testKey})
		docs, err := reopened.Find(context.Background(), "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Rejects Invalid Config", func(t *testing.T) {
		_, err := Open(Config{})
		assert.ErrorIs(t, err, core.ErrInvalidConfig)

		_, err = Open(Config{Path: dbPath(t), Encrypted: true})
		assert.ErrorIs(t, err, core.ErrInvalidConfig)

		_, err = Open(Config{Path: dbPath(t), Encrypted: true, Key: "deadbeef"})
		assert.ErrorIs(t, err, core.ErrInvalidConfig)
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		_, err := Open(Config{Path: filepath.Join(t.TempDir(), "missing", "db.json")})
		assert.ErrorIs(t, err, core.ErrIO)
	})

	t.Run("Skips Malformed Documents", func(t *testing.T) {
		path := dbPath(t)
		raw := `{"docs":[{"id":"a","doc_type":"user"},{"doc_type":"user"},{"id":"c"},null]}`
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		repo := openRepo(t, Config{Path: path})
		docs, err := repo.Find(context.Background(), "user", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(docs))
	})
}

// Mirrors the canonical usage: insert, list, partial update, filtered find.
func TestRepository_Scenario(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, Config{Path: dbPath(t)})

	saved, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
	require.NoError(t, err)
	id := saved.ID()
	require.NotEmpty(t, id)
	assert.Equal(t, core.Document{"id": id, "doc_type": "user", "name": "Ann"}, saved)

	docs, err := repo.Find(ctx, "user", nil)
	require.NoError(t, err)
	assert.Equal(t, []core.Document{saved}, docs)

	updated, err := repo.Save(ctx, "user", core.Document{"id": id, "age": 30})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated["name"])
	assert.Equal(t, float64(30), updated["age"])

	docs, err = repo.Find(ctx, "user", []core.Filter{{Type: "equals", Property: "age", Value: 30}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, updated, docs[0])
}

func TestRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert Assigns Fresh IDs", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			doc, err := repo.Save(ctx, "item", core.Document{"n": i})
			require.NoError(t, err)
			require.NotEmpty(t, doc.ID())
			require.False(t, seen[doc.ID()], "duplicate id %s", doc.ID())
			seen[doc.ID()] = true
		}
	})

	t.Run("Insert Treats Empty ID As New", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		doc, err := repo.Save(ctx, "item", core.Document{"id": "", "x": 1})
		require.NoError(t, err)
		assert.NotEmpty(t, doc.ID())
		assert.Equal(t, "item", doc.Type())
	})

	t.Run("Update Preserves Unspecified Fields", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		doc, err := repo.Save(ctx, "user", core.Document{"name": "Bob", "city": "Lisbon", "age": 40})
		require.NoError(t, err)

		_, err = repo.Save(ctx, "user", core.Document{"id": doc.ID(), "age": 41})
		require.NoError(t, err)

		got, err := repo.Get(ctx, doc.ID())
		require.NoError(t, err)
		assert.Equal(t, "Bob", got["name"])
		assert.Equal(t, "Lisbon", got["city"])
		assert.Equal(t, float64(41), got["age"])
		assert.Equal(t, "user", got.Type())
	})

	t.Run("Update Unknown ID", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		_, err := repo.Save(ctx, "user", core.Document{"id": "nope", "x": 1})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Doc Type Is Immutable", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		doc, err := repo.Save(ctx, "user", core.Document{"name": "Cy"})
		require.NoError(t, err)

		_, err = repo.Save(ctx, "admin", core.Document{"id": doc.ID(), "x": 1})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = repo.Save(ctx, "user", core.Document{"id": doc.ID(), "doc_type": "admin"})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = repo.Save(ctx, "user", core.Document{"doc_type": "admin"})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("Invalid Input", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})

		_, err := repo.Save(ctx, "user", nil)
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = repo.Save(ctx, "", core.Document{"a": 1})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = repo.Save(ctx, "user", core.Document{"id": 42})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		_, err = repo.Save(ctx, "user", core.Document{"fn": func() {}})
		assert.ErrorIs(t, err, core.ErrInvalidInput)

		docs, err := repo.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Returns Copies", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		doc, err := repo.Save(ctx, "user", core.Document{"tags": []any{"a"}})
		require.NoError(t, err)

		doc["tags"].([]any)[0] = "mutated"
		doc["extra"] = true

		got, err := repo.Get(ctx, doc.ID())
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, got["tags"])
		assert.NotContains(t, got, "extra")
	})

	t.Run("Rolls Back On Write Failure", func(t *testing.T) {
		dir := t.TempDir()
		repo := openRepo(t, Config{Path: filepath.Join(dir, "db.json")})
		require.NoError(t, os.Chmod(dir, 0o500))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}

		_, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
		assert.ErrorIs(t, err, core.ErrIO)

		docs, err := repo.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, Config{Path: dbPath(t)})

	seed := []core.Document{
		{"name": "Ann", "role": "admin", "age": 30},
		{"name": "Bob", "role": "admin", "age": 25},
		{"name": "Cid", "role": "user", "age": 30},
		{"name": "Dee", "role": "user", "age": "30"},
	}
	for _, d := range seed {
		_, err := repo.Save(ctx, "person", d)
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, "pet", core.Document{"name": "Rex", "age": 30})
	require.NoError(t, err)

	names := func(docs []core.Document) []string {
		var out []string
		for _, d := range docs {
			out = append(out, d["name"].(string))
		}
		return out
	}

	t.Run("By Type Only", func(t *testing.T) {
		docs, err := repo.Find(ctx, "person", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Bob", "Cid", "Dee"}, names(docs))
	})

	t.Run("Strict Equality", func(t *testing.T) {
		docs, err := repo.Find(ctx, "person", []core.Filter{core.Equals("age", 30)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(docs))
	})

	t.Run("Case Insensitive Type", func(t *testing.T) {
		docs, err := repo.Find(ctx, "person", []core.Filter{{Type: "EQUALS", Property: "name", Value: "Bob"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, names(docs))
	})

	t.Run("Conjunction Is Intersection", func(t *testing.T) {
		f1 := core.Equals("role", "admin")
		f2 := core.Equals("age", 30)

		a, err := repo.Find(ctx, "person", []core.Filter{f1})
		require.NoError(t, err)
		b, err := repo.Find(ctx, "person", []core.Filter{f2})
		require.NoError(t, err)
		both, err := repo.Find(ctx, "person", []core.Filter{f1, f2})
		require.NoError(t, err)

		var want []string
		for _, id := range ids(a) {
			if contains(ids(b), id) {
				want = append(want, id)
			}
		}
		assert.Equal(t, want, ids(both))
		assert.Equal(t, []string{"Ann"}, names(both))
	})

	t.Run("No Matches Is Empty Not Nil", func(t *testing.T) {
		docs, err := repo.Find(ctx, "ghost", nil)
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("Invalid Filters Fail Closed", func(t *testing.T) {
		bad := []core.Filter{
			{Type: "contains", Property: "name", Value: "A"},
			{Type: "", Property: "name", Value: "Ann"},
			{Type: "equals", Property: "", Value: "Ann"},
			{Type: "equals", Property: "name", Value: nil},
			{Type: "equals", Property: "name", Value: ""},
		}
		for _, f := range bad {
			docs, err := repo.Find(ctx, "person", []core.Filter{core.Equals("role", "admin"), f})
			assert.ErrorIs(t, err, core.ErrInvalidInput, "filter %+v", f)
			assert.Nil(t, docs)

			_, err = repo.Find(ctx, "ghost", []core.Filter{f})
			assert.ErrorIs(t, err, core.ErrInvalidInput, "filter %+v on empty type", f)
		}
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete Then Find", func(t *testing.T) {
		path := dbPath(t)
		repo := openRepo(t, Config{Path: path})
		doc, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, doc.ID(), false))

		docs, err := repo.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.NotContains(t, ids(docs), doc.ID())

		_, err = repo.Get(ctx, doc.ID())
		assert.ErrorIs(t, err, core.ErrNotFound)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"docs":[]}`, string(data))
	})

	t.Run("Unknown ID", func(t *testing.T) {
		repo := openRepo(t, Config{Path: dbPath(t)})
		assert.ErrorIs(t, repo.Delete(ctx, "missing", false), core.ErrNotFound)
	})

	t.Run("Bulk Defers Persist Until Flush", func(t *testing.T) {
		path := dbPath(t)
		repo := openRepo(t, Config{Path: path})
		doc, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, doc.ID(), true))

		onDisk := openRepo(t, Config{Path: path, ReadOnly: true})
		docs, err := onDisk.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Len(t, docs, 1, "bulk delete must not persist")

		require.NoError(t, repo.Flush(ctx))

		onDisk = openRepo(t, Config{Path: path, ReadOnly: true})
		docs, err = onDisk.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestRepository_Persistence(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		cfg  func(path string) Config
	}{
		{"plaintext", func(p string) Config { return Config{Path: p} }},
		{"encrypted", func(p string) Config { return Config{Path: p, Encrypted: true, Key: testKey} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := dbPath(t)
			repo := openRepo(t, tc.cfg(path))

			var want []core.Document
			for _, name := range []string{"Ann", "Bob", "Cid"} {
				doc, err := repo.Save(ctx, "user", core.Document{"name": name, "nested": map[string]any{"n": name}})
				require.NoError(t, err)
				want = append(want, doc)
			}

			reopened := openRepo(t, tc.cfg(path))
			got, err := reopened.Find(ctx, "user", nil)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRepository_FailedHydration(t *testing.T) {
	ctx := context.Background()

	t.Run("Wrong Key", func(t *testing.T) {
		path := dbPath(t)
		repo := openRepo(t, Config{Path: path, Encrypted: true, Key: testKey})
		_, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
		require.NoError(t, err)
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		wrong, err := Open(Config{Path: path, Encrypted: true, Key: otherTestKey})
		require.NoError(t, err, "load failures must not surface from Open")

		err = wrong.WaitReady(ctx)
		assert.ErrorIs(t, err, core.ErrDecrypt)

		docs, err := wrong.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)

		_, err = wrong.Save(ctx, "user", core.Document{"name": "Eve"})
		assert.ErrorIs(t, err, core.ErrDecrypt)
		assert.ErrorIs(t, wrong.Flush(ctx), core.ErrDecrypt)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after, "file must not be overwritten")
	})

	t.Run("Corrupt Plaintext", func(t *testing.T) {
		path := dbPath(t)
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

		repo, err := Open(Config{Path: path})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.WaitReady(ctx), core.ErrDecode)

		state := repo.State().(RepositoryState)
		assert.True(t, state.Ready)
		assert.NotEmpty(t, state.LoadError)
	})
}

func TestRepository_ReadOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing File Is Not Created", func(t *testing.T) {
		path := dbPath(t)
		repo := openRepo(t, Config{Path: path, ReadOnly: true})

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		docs, err := repo.Find(ctx, "user", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Writes Are Rejected", func(t *testing.T) {
		path := dbPath(t)
		rw := openRepo(t, Config{Path: path})
		doc, err := rw.Save(ctx, "user", core.Document{"name": "Ann"})
		require.NoError(t, err)

		ro := openRepo(t, Config{Path: path, ReadOnly: true})
		_, err = ro.Save(ctx, "user", core.Document{"name": "Bob"})
		assert.ErrorIs(t, err, core.ErrReadOnly)
		assert.ErrorIs(t, ro.Delete(ctx, doc.ID(), false), core.ErrReadOnly)
		assert.ErrorIs(t, ro.Flush(ctx), core.ErrReadOnly)

		got, err := ro.Get(ctx, doc.ID())
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})
}

func TestRepository_WaitReadyHonoursContext(t *testing.T) {
	repo := &Repository{ready: make(chan struct{}), ix: newIndex()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, repo.WaitReady(ctx), context.DeadlineExceeded)
	_, err := repo.Find(ctx, "user", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRepository_State(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, Config{Path: dbPath(t), Encrypted: true, Key: testKey})
	_, err := repo.Save(ctx, "user", core.Document{"name": "Ann"})
	require.NoError(t, err)
	_, err = repo.Save(ctx, "note", core.Document{"body": "x"})
	require.NoError(t, err)

	state, ok := repo.State().(RepositoryState)
	require.True(t, ok)
	assert.True(t, state.Encrypted)
	assert.True(t, state.Ready)
	assert.Equal(t, 2, state.Documents)
	assert.Equal(t, map[string]int{"user": 1, "note": 1}, state.Types)
	assert.NotNil(t, state.LastPersist)
	assert.Equal(t, "repository", repo.ComponentType())
}

func TestRepository_Types(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, Config{Path: dbPath(t)})

	types, err := repo.Types(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)

	for _, docType := range []string{"user", "user", "note"} {
		_, err := repo.Save(ctx, docType, core.Document{})
		require.NoError(t, err)
	}

	types, err = core.NewService(repo).Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"user": 2, "note": 1}, types)
}
