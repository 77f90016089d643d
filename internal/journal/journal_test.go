package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.AccountID{1}
	bob   = domain.AccountID{2}
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "db", "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestPublishAndList(t *testing.T) {
	j := openTestJournal(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	require.NoError(t, j.Publish(registry.Event{Kind: registry.EventRegister, Name: "alice", From: alice}))
	require.NoError(t, j.Publish(registry.Event{Kind: registry.EventRegister, Name: "bob", From: bob}))
	require.NoError(t, j.Publish(registry.Event{
		Kind: registry.EventTransfer,
		Name: "alice",
		From: alice,
		Old:  &alice,
		New:  &bob,
	}))

	entries, err := j.List("alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, registry.EventRegister, entries[0].Kind)
	assert.Equal(t, alice, entries[0].From)
	assert.Nil(t, entries[0].Old)
	assert.NotEmpty(t, entries[0].ID)
	assert.True(t, fixed.Equal(entries[0].CreatedAt))

	assert.Equal(t, registry.EventTransfer, entries[1].Kind)
	require.NotNil(t, entries[1].New)
	assert.Equal(t, bob, *entries[1].New)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	all, err := j.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestJournalAsRegistrySink(t *testing.T) {
	j := openTestJournal(t)
	r := registry.New(registry.Config{Owner: alice, Events: j})

	require.NoError(t, r.Register(alice, "test", nil, nil))
	require.NoError(t, r.SetAddress(alice, "test", bob))
	require.NoError(t, r.Release(alice, "test"))

	entries, err := j.List("test")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, registry.EventRegister, entries[0].Kind)
	assert.Equal(t, registry.EventSetAddress, entries[1].Kind)
	assert.Equal(t, registry.EventRelease, entries[2].Kind)
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Publish(registry.Event{Kind: registry.EventRegister, Name: "test", From: alice}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.List("test")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
